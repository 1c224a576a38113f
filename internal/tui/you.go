package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/vendora/pkg/domain"
	"github.com/naveenspark/vendora/pkg/query"
)

// loggedOutMsg is sent after the operator signs out from the session screen.
type loggedOutMsg struct{ err error }

type youModel struct {
	env        *Env
	me         *query.Query[struct{}, *domain.UserProfile]
	confirming bool
	statusMsg  string
	width      int
	height     int
}

func newYouModel(env *Env) youModel {
	api := env.API
	fetch := func(ctx context.Context, token string, _ struct{}) (*domain.UserProfile, error) {
		return api.Me(ctx, token)
	}
	return youModel{
		env: env,
		me:  query.New(fetch, query.WithName("me"), query.WithLogger(env.logger())),
	}
}

func (m youModel) Init() tea.Cmd {
	return m.me.Use(m.env.Token(), struct{}{})
}

func (m youModel) Update(msg tea.Msg) (youModel, tea.Cmd) {
	if m.me.Update(msg) {
		return m, expiredCmd(m.me.Error())
	}

	switch msg := msg.(type) {
	case loggedOutMsg:
		m.confirming = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("logout failed: %v", msg.err)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.confirming {
			switch msg.String() {
			case "y":
				store := m.env.Session
				return m, func() tea.Msg {
					if store == nil {
						return loggedOutMsg{}
					}
					return loggedOutMsg{err: store.Logout()}
				}
			default:
				m.confirming = false
			}
			return m, nil
		}
		switch msg.String() {
		case "L":
			m.confirming = true
		case "r":
			return m, m.me.Refetch()
		}
	}
	return m, nil
}

func (m youModel) helpKeys() string {
	if m.confirming {
		return helpBar("y", "sign out", "any", "cancel")
	}
	return helpBar("1-6", "tabs", "r", "refresh", "L", "sign out", "q", "quit")
}

// profile prefers the freshly fetched profile over the stored one.
func (m youModel) profile() *domain.UserProfile {
	if u := m.me.Data(); u != nil {
		return u
	}
	if m.env.Session != nil {
		return m.env.Session.Session().User
	}
	return nil
}

func (m youModel) View() string {
	var b strings.Builder
	u := m.profile()
	if u == nil {
		b.WriteString(" " + dimStyle.Render("not signed in") + "\n")
	} else {
		fmt.Fprintf(&b, " %s  %s\n", selectedStyle.Render(u.FullName), RoleStyle(u.Role).Render(u.Role))
		fmt.Fprintf(&b, " %s\n\n", dimStyle.Render(u.Email))
	}

	row := func(label, value string) {
		fmt.Fprintf(&b, " %s %s\n", sectionHeaderStyle.Render(padRight(label, 14)), normalStyle.Render(value))
	}
	row("api", m.env.APIURL)
	if m.env.Session != nil {
		sess := m.env.Session.Session()
		if !sess.LastActivityAt.IsZero() {
			row("last activity", formatTime(sess.LastActivityAt))
		}
		if exp, ok := m.env.Session.ExpiresAt(); ok {
			row("token expires", exp.Local().Format(time.RFC822))
		}
	}
	if m.env.TokenOverride != "" {
		row("token", "from VENDORA_TOKEN")
	}
	if m.me.Err() != "" {
		b.WriteString("\n " + errorStyle.Render(m.me.Err()) + "\n")
	}

	switch {
	case m.confirming:
		b.WriteString("\n " + bannerStyle.Render("sign out? (y/n)"))
	case m.statusMsg != "":
		b.WriteString("\n " + goldStyle.Render(m.statusMsg))
	}
	return b.String()
}
