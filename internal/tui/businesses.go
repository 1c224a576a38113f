package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/domain"
	"github.com/naveenspark/vendora/pkg/query"
)

type businessMode int

const (
	bizList businessMode = iota
	bizDetail
	bizCreate
	bizDeleting
)

type businessDeletedMsg struct {
	id  string
	err error
}

type businessesModel struct {
	env     *Env
	list    *query.Query[api.BusinessParams, *domain.PagedResult[domain.Business]]
	detailQ *query.Query[string, *domain.Business]
	params  api.BusinessParams
	push    func(searchInput)
	form    businessForm

	mode      businessMode
	cursor    int
	searching bool
	search    string
	status    string
	width     int
	height    int
}

func newBusinessesModel(env *Env, push func(searchInput)) businessesModel {
	log := env.logger()
	return businessesModel{
		env:     env,
		list:    query.New(env.API.ListBusinesses, query.WithName("businesses"), query.WithLogger(log)),
		detailQ: query.New(env.API.GetBusiness, query.WithName("business"), query.WithLogger(log)),
		params:  api.BusinessParams{Pagination: api.Pagination{Page: 1, Limit: env.pageSize()}},
		push:    push,
		form:    newBusinessForm(env),
	}
}

func (m businessesModel) Init() tea.Cmd {
	return m.list.Use(m.env.Token(), m.params)
}

// editing reports whether keystrokes are text input.
func (m businessesModel) editing() bool {
	return m.searching || m.mode == bizCreate
}

func (m businessesModel) selected() (domain.Business, bool) {
	page := m.list.Data()
	if page == nil || m.cursor < 0 || m.cursor >= len(page.Items) {
		return domain.Business{}, false
	}
	return page.Items[m.cursor], true
}

func (m businessesModel) Update(msg tea.Msg) (businessesModel, tea.Cmd) {
	if m.list.Update(msg) {
		if page := m.list.Data(); page != nil && m.cursor >= len(page.Items) {
			m.cursor = max(len(page.Items)-1, 0)
		}
		return m, expiredCmd(m.list.Error())
	}
	if m.detailQ.Update(msg) {
		return m, expiredCmd(m.detailQ.Error())
	}

	switch msg := msg.(type) {
	case searchSettledMsg:
		if msg.target != searchBusinesses {
			return m, nil
		}
		return m.applySearch(msg.text)

	case businessCreatedMsg:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		if msg.err == nil {
			m.mode = bizList
			m.status = successStyle.Render("created " + msg.business.Name)
			return m, m.list.Refetch()
		}
		return m, tea.Batch(cmd, expiredCmd(msg.err))

	case businessDeletedMsg:
		m.mode = bizList
		if msg.err != nil {
			m.status = errorStyle.Render(client.Message(msg.err))
			return m, expiredCmd(msg.err)
		}
		m.status = successStyle.Render("deleted " + shortID(msg.id))
		return m, m.list.Refetch()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case m.mode == bizCreate:
			if msg.String() == "esc" {
				m.mode = bizList
				return m, nil
			}
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		case m.mode == bizDeleting:
			return m.updateDelete(msg)
		case m.searching:
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m businessesModel) updateSearch(msg tea.KeyMsg) (businessesModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		return m, nil
	case "enter":
		m.searching = false
		return m.applySearch(m.search)
	}
	next := editRune(m.search, msg.String())
	if next != m.search {
		m.search = next
		if m.push != nil {
			m.push(searchInput{target: searchBusinesses, text: next})
		}
	}
	return m, nil
}

func (m businessesModel) applySearch(text string) (businessesModel, tea.Cmd) {
	m.search = text
	m.params.Search = strings.TrimSpace(text)
	m.params.Page = 1
	m.cursor = 0
	return m, m.list.Use(m.env.Token(), m.params)
}

func (m businessesModel) updateDelete(msg tea.KeyMsg) (businessesModel, tea.Cmd) {
	switch msg.String() {
	case "y":
		b, ok := m.selected()
		if !ok {
			m.mode = bizList
			return m, nil
		}
		env := m.env
		m.status = dimStyle.Render("deleting " + b.Name + "...")
		return m, func() tea.Msg {
			err := env.API.DeleteBusiness(context.Background(), env.Token(), b.ID)
			return businessDeletedMsg{id: b.ID, err: err}
		}
	case "n", "esc":
		m.mode = bizList
		m.status = ""
	}
	return m, nil
}

func (m businessesModel) updateKeys(msg tea.KeyMsg) (businessesModel, tea.Cmd) {
	m.status = ""

	if m.mode == bizDetail {
		switch msg.String() {
		case "esc", "backspace":
			m.mode = bizList
		case "r":
			return m, m.detailQ.Refetch()
		}
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		if page := m.list.Data(); page != nil && m.cursor < len(page.Items)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.searching = true
	case "]":
		if page := m.list.Data(); page != nil && page.HasNext() {
			m.params.Page++
			m.cursor = 0
			return m, m.list.Use(m.env.Token(), m.params)
		}
	case "[":
		if m.params.Page > 1 {
			m.params.Page--
			m.cursor = 0
			return m, m.list.Use(m.env.Token(), m.params)
		}
	case "enter":
		if b, ok := m.selected(); ok {
			m.mode = bizDetail
			return m, m.detailQ.Use(m.env.Token(), b.ID)
		}
	case "n":
		m.mode = bizCreate
		m.form = newBusinessForm(m.env)
	case "d":
		if _, ok := m.selected(); ok {
			m.mode = bizDeleting
		}
	case "r":
		return m, m.list.Refetch()
	}
	return m, nil
}

func (m businessesModel) helpKeys() string {
	switch {
	case m.mode == bizCreate:
		return helpBar("tab", "next", "ctrl+s", "save", "esc", "cancel")
	case m.mode == bizDeleting:
		return helpBar("y", "delete", "n", "keep")
	case m.mode == bizDetail:
		return helpBar("r", "refresh", "esc", "back")
	case m.searching:
		return helpBar("enter", "apply", "esc", "done")
	}
	return helpBar("1-6", "tabs", "j/k", "nav", "[ ]", "page", "/", "search", "enter", "open", "n", "new", "d", "delete", "q", "quit")
}

func (m businessesModel) View() string {
	switch m.mode {
	case bizCreate:
		return m.form.View()
	case bizDetail:
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(renderSearch(m.search, m.searching) + "\n")

	page := m.list.Data()
	switch {
	case m.list.Err() != "":
		b.WriteString(" " + errorStyle.Render("error: "+m.list.Err()) + "\n")
	case m.list.Loading() && page == nil:
		b.WriteString(" " + dimStyle.Render("loading businesses...") + "\n")
	case page == nil || len(page.Items) == 0:
		b.WriteString(" " + dimStyle.Render("no businesses") + "\n")
	default:
		for i, biz := range page.Items {
			state := successStyle.Render("active  ")
			if !biz.Active {
				state = metaStyle.Render("inactive")
			}
			row := fmt.Sprintf("%s  %s  %s  %s",
				normalStyle.Render(padRight(biz.Name, 24)),
				dimStyle.Render(padRight(biz.Category, 14)),
				dimStyle.Render(padRight(biz.Email, 26)),
				state,
			)
			if i == m.cursor {
				b.WriteString(accentStyle.Render(" > ") + selectedRowBg.Render(row) + "\n")
			} else {
				b.WriteString("   " + row + "\n")
			}
		}
	}

	b.WriteString("\n " + metaStyle.Render(pageLine(page)))
	if m.mode == bizDeleting {
		if biz, ok := m.selected(); ok {
			b.WriteString("\n " + bannerStyle.Render(fmt.Sprintf("delete %s? (y/n)", biz.Name)))
		}
	} else if m.status != "" {
		b.WriteString("\n " + m.status)
	}
	return b.String()
}

func (m businessesModel) detailView() string {
	biz := m.detailQ.Data()
	if biz == nil {
		if m.detailQ.Err() != "" {
			return " " + errorStyle.Render("error: "+m.detailQ.Err())
		}
		return " " + dimStyle.Render("loading business...")
	}
	var b strings.Builder
	fmt.Fprintf(&b, " %s\n\n", selectedStyle.Render(biz.Name))
	rows := []struct{ label, value string }{
		{"id", biz.ID},
		{"category", biz.Category},
		{"email", biz.Email},
		{"phone", biz.Phone},
		{"address", biz.Address},
		{"created", formatTime(biz.CreatedAt)},
	}
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		fmt.Fprintf(&b, " %s %s\n", sectionHeaderStyle.Render(padRight(r.label, 10)), normalStyle.Render(r.value))
	}
	if biz.Description != "" {
		b.WriteString("\n " + dimStyle.Render(biz.Description) + "\n")
	}
	return b.String()
}
