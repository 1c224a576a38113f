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

type loginDoneMsg struct {
	user *domain.UserProfile
	err  error
}

// loginModel is the sign-in screen. It doubles as the expired-session screen.
type loginModel struct {
	env       *Env
	email     string
	password  string
	focus     int // 0 email, 1 password
	expired   bool
	busy      bool
	statusMsg string
}

func newLoginModel(env *Env, expired bool) loginModel {
	m := loginModel{env: env, expired: expired}
	if env.Session != nil {
		if u := env.Session.Session().User; u != nil {
			m.email = u.Email
		}
	}
	if m.email != "" {
		m.focus = 1
	}
	return m
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.statusMsg = client.Message(msg.err)
			m.password = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		m.statusMsg = ""
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.focus = 1 - m.focus
		case "enter":
			if m.focus == 0 {
				m.focus = 1
				return m, nil
			}
			return m.submit()
		default:
			if m.focus == 0 {
				m.email = editRune(m.email, msg.String())
			} else {
				m.password = editRune(m.password, msg.String())
			}
		}
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	creds := api.Credentials{Email: strings.TrimSpace(m.email), Password: m.password}
	if err := validate.Struct(creds); err != nil {
		var verrs validate.Errors
		if errors.As(err, &verrs) {
			m.statusMsg = verrs.Error()
		} else {
			m.statusMsg = err.Error()
		}
		return m, nil
	}
	m.busy = true
	env := m.env
	return m, func() tea.Msg {
		res, err := env.API.Login(context.Background(), creds)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		if env.Session != nil {
			if err := env.Session.Login(res.Token, res.User); err != nil {
				return loginDoneMsg{err: fmt.Errorf("save session: %w", err)}
			}
		}
		return loginDoneMsg{user: res.User}
	}
}

func (m loginModel) helpKeys() string {
	return helpBar("tab", "next", "enter", "sign in", "ctrl+c", "quit")
}

func (m loginModel) View() string {
	var b strings.Builder
	if m.expired {
		b.WriteString(" " + bannerStyle.Render(client.SessionExpiredMessage) + "\n\n")
	} else {
		b.WriteString(" " + selectedStyle.Render("Sign in") + "\n\n")
	}

	fields := []struct {
		label, value string
	}{
		{"email", m.email},
		{"password", maskSecret(m.password)},
	}
	for i, f := range fields {
		cursor := " "
		style := metaStyle
		value := f.value
		if i == m.focus {
			cursor = ">"
			style = selectedStyle
			value += "█"
		}
		fmt.Fprintf(&b, " %s %s %s\n", accentStyle.Render(cursor), style.Render(padRight(f.label, 10)), value)
	}

	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("signing in..."))
	case m.statusMsg != "":
		b.WriteString(" " + errorStyle.Render(m.statusMsg))
	}
	return b.String()
}
