package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/session"
)

// defaultPageSize is the number of rows fetched per list page.
const defaultPageSize = 10

// Env is the backend access shared by every screen.
type Env struct {
	API     *api.Client
	Session *session.Store
	Log     logrus.FieldLogger

	// TokenOverride replaces the stored token when set (VENDORA_TOKEN).
	TokenOverride string
	PageSize      int
	APIURL        string
}

// Token returns the bearer token screens should fetch with.
func (e *Env) Token() string {
	if e.TokenOverride != "" {
		return e.TokenOverride
	}
	if e.Session == nil {
		return ""
	}
	return e.Session.Token()
}

func (e *Env) pageSize() int {
	if e.PageSize > 0 {
		return e.PageSize
	}
	return defaultPageSize
}

func (e *Env) logger() logrus.FieldLogger {
	if e.Log != nil {
		return e.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// sessionExpiredMsg switches the app to the expired screen.
type sessionExpiredMsg struct{}

// expiredCmd emits sessionExpiredMsg when err ended the session.
func expiredCmd(err error) tea.Cmd {
	if !client.IsAuthExpired(err) {
		return nil
	}
	return func() tea.Msg { return sessionExpiredMsg{} }
}

// searchTarget names the screen a debounced search belongs to.
type searchTarget int

const (
	searchOrders searchTarget = iota
	searchBusinesses
	searchProducts
	searchUsers
)

// searchInput is pushed to the debouncer on every keystroke.
type searchInput struct {
	target searchTarget
	text   string
}

// searchSettledMsg is delivered once typing pauses.
type searchSettledMsg searchInput

// statusMsg is a transient line shown under a screen.
type statusMsg struct {
	text string
	err  error
}
