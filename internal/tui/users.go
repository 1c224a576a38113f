package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/domain"
	"github.com/naveenspark/vendora/pkg/query"
)

var roleFilters = []string{"", domain.RoleAdmin, domain.RoleManager, domain.RoleVendor, domain.RoleCustomer}

type usersModel struct {
	env    *Env
	list   *query.Query[api.UserParams, *domain.PagedResult[domain.User]]
	params api.UserParams
	push   func(searchInput)

	cursor    int
	searching bool
	search    string
	width     int
	height    int
}

func newUsersModel(env *Env, push func(searchInput)) usersModel {
	return usersModel{
		env:    env,
		list:   query.New(env.API.ListUsers, query.WithName("users"), query.WithLogger(env.logger())),
		params: api.UserParams{Pagination: api.Pagination{Page: 1, Limit: env.pageSize()}},
		push:   push,
	}
}

func (m usersModel) Init() tea.Cmd {
	return m.list.Use(m.env.Token(), m.params)
}

func (m usersModel) Update(msg tea.Msg) (usersModel, tea.Cmd) {
	if m.list.Update(msg) {
		if page := m.list.Data(); page != nil && m.cursor >= len(page.Items) {
			m.cursor = max(len(page.Items)-1, 0)
		}
		return m, expiredCmd(m.list.Error())
	}

	switch msg := msg.(type) {
	case searchSettledMsg:
		if msg.target != searchUsers {
			return m, nil
		}
		m.search = msg.text
		m.params.Search = strings.TrimSpace(msg.text)
		m.params.Page = 1
		m.cursor = 0
		return m, m.list.Use(m.env.Token(), m.params)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "esc", "enter":
				m.searching = false
				return m, nil
			}
			if next := editRune(m.search, msg.String()); next != m.search {
				m.search = next
				if m.push != nil {
					m.push(searchInput{target: searchUsers, text: next})
				}
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
		case "f":
			m.params.Role = nextRole(m.params.Role)
			m.params.Page = 1
			m.cursor = 0
			return m, m.list.Use(m.env.Token(), m.params)
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
		case "r":
			return m, m.list.Refetch()
		}
	}
	return m, nil
}

func nextRole(cur string) string {
	for i, r := range roleFilters {
		if r == cur {
			return roleFilters[(i+1)%len(roleFilters)]
		}
	}
	return ""
}

func (m usersModel) helpKeys() string {
	if m.searching {
		return helpBar("esc", "done")
	}
	return helpBar("1-6", "tabs", "j/k", "nav", "f", "role", "[ ]", "page", "/", "search", "q", "quit")
}

func (m usersModel) View() string {
	var b strings.Builder
	role := m.params.Role
	if role == "" {
		role = "all"
	}
	b.WriteString(" " + sectionHeaderStyle.Render("role") + " " + RoleStyle(m.params.Role).Underline(true).Render(role) + "\n")
	b.WriteString(renderSearch(m.search, m.searching) + "\n")

	page := m.list.Data()
	switch {
	case m.list.Err() != "":
		b.WriteString(" " + errorStyle.Render("error: "+m.list.Err()) + "\n")
	case m.list.Loading() && page == nil:
		b.WriteString(" " + dimStyle.Render("loading users...") + "\n")
	case page == nil || len(page.Items) == 0:
		b.WriteString(" " + dimStyle.Render("no users") + "\n")
	default:
		for i, u := range page.Items {
			seen := "never"
			if u.LastLoginAt != nil {
				seen = formatTime(*u.LastLoginAt)
			}
			row := fmt.Sprintf("%s  %s  %s  %s",
				normalStyle.Render(padRight(u.FullName, 22)),
				dimStyle.Render(padRight(u.Email, 28)),
				RoleStyle(u.Role).Render(padRight(u.Role, 9)),
				metaStyle.Render(seen),
			)
			if !u.Active {
				row += " " + errorStyle.Render("disabled")
			}
			if i == m.cursor {
				b.WriteString(accentStyle.Render(" > ") + selectedRowBg.Render(row) + "\n")
			} else {
				b.WriteString("   " + row + "\n")
			}
		}
	}
	b.WriteString("\n " + metaStyle.Render(pageLine(page)))
	return b.String()
}
