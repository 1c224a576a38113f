package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/vendora/internal/validate"
	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/domain"
)

type formField int

const (
	fieldName formField = iota
	fieldCategory
	fieldEmail
	fieldPhone
	fieldAddress
	fieldDescription
	numFields
)

var fieldLabels = [numFields]string{"name", "category", "email", "phone", "address", "description"}

type businessCreatedMsg struct {
	business *domain.Business
	err      error
}

// businessForm collects a new business and validates it before submitting.
type businessForm struct {
	env       *Env
	fields    [numFields]string
	focus     formField
	invalid   validate.Errors
	statusMsg string
	submitted bool
}

func newBusinessForm(env *Env) businessForm {
	return businessForm{env: env}
}

func (f businessForm) input() api.BusinessInput {
	return api.BusinessInput{
		Name:        strings.TrimSpace(f.fields[fieldName]),
		Category:    strings.TrimSpace(f.fields[fieldCategory]),
		Email:       strings.TrimSpace(f.fields[fieldEmail]),
		Phone:       strings.TrimSpace(f.fields[fieldPhone]),
		Address:     strings.TrimSpace(f.fields[fieldAddress]),
		Description: strings.TrimSpace(f.fields[fieldDescription]),
	}
}

func (f businessForm) Update(msg tea.Msg) (businessForm, tea.Cmd) {
	switch msg := msg.(type) {
	case businessCreatedMsg:
		f.submitted = false
		if msg.err != nil {
			f.statusMsg = client.Message(msg.err)
			return f, nil
		}
		f.statusMsg = "created " + msg.business.Name
		f.fields = [numFields]string{}
		f.focus = fieldName
		return f, nil

	case tea.KeyMsg:
		return f.updateKeys(msg)
	}
	return f, nil
}

func (f businessForm) updateKeys(msg tea.KeyMsg) (businessForm, tea.Cmd) {
	f.statusMsg = ""

	switch msg.String() {
	case "ctrl+s":
		return f.submit()
	case "tab", "down":
		f.focus = (f.focus + 1) % numFields
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + numFields) % numFields
	case "enter":
		if f.focus == numFields-1 {
			return f.submit()
		}
		f.focus++
	default:
		field := &f.fields[f.focus]
		*field = editRune(*field, msg.String())
	}
	return f, nil
}

func (f businessForm) submit() (businessForm, tea.Cmd) {
	if f.submitted {
		return f, nil
	}
	in := f.input()
	f.invalid = nil
	if err := validate.Struct(in); err != nil {
		var verrs validate.Errors
		if errors.As(err, &verrs) {
			f.invalid = verrs
			f.statusMsg = "fix the highlighted fields"
		} else {
			f.statusMsg = err.Error()
		}
		return f, nil
	}

	f.submitted = true
	env := f.env
	return f, func() tea.Msg {
		b, err := env.API.CreateBusiness(context.Background(), env.Token(), in)
		return businessCreatedMsg{business: b, err: err}
	}
}

func (f businessForm) View() string {
	var b strings.Builder
	b.WriteString(" " + selectedStyle.Render("New business") + "\n\n")

	for i := formField(0); i < numFields; i++ {
		label := fieldLabels[i]
		value := f.fields[i]
		cursor := " "
		style := metaStyle
		if i == f.focus {
			cursor = ">"
			style = selectedStyle
			value += "█"
		}
		fmt.Fprintf(&b, " %s %s %s\n", accentStyle.Render(cursor), style.Render(padRight(label, 12)), value)
		if msg, ok := f.invalid[label]; ok {
			fmt.Fprintf(&b, "   %s\n", errorStyle.Render(msg))
		}
	}

	b.WriteString("\n")
	switch {
	case f.submitted:
		b.WriteString(" " + dimStyle.Render("creating..."))
	case f.statusMsg != "":
		b.WriteString(" " + goldStyle.Render(f.statusMsg))
	}
	return b.String()
}
