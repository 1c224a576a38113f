package tui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/domain"
	"github.com/naveenspark/vendora/pkg/guard"
	"github.com/naveenspark/vendora/pkg/session"
)

// recorder captures the requests a fake backend receives.
type recorder struct {
	mu   sync.Mutex
	reqs []recorded
}

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
}

func (r *recorder) add(req *http.Request) recorded {
	body, _ := io.ReadAll(req.Body)
	rec := recorded{Method: req.Method, Path: req.URL.EscapedPath(), Query: req.URL.RawQuery, Body: string(body)}
	r.mu.Lock()
	r.reqs = append(r.reqs, rec)
	r.mu.Unlock()
	return rec
}

func (r *recorder) last() recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reqs) == 0 {
		return recorded{}
	}
	return r.reqs[len(r.reqs)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reqs)
}

// newTestEnv serves h behind the guard with a signed-in session for "tok".
func newTestEnv(t *testing.T, h http.HandlerFunc) (*Env, *guard.Guard) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	store := session.New(session.NewMemoryStorage())
	if err := store.Login("tok", &domain.UserProfile{ID: "u1", FullName: "Ada Admin", Email: "ada@vendora.io", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("login: %v", err)
	}
	g := guard.New(client.New(srv.URL), store, nil)
	return &Env{API: api.New(g), Session: store, PageSize: 10, APIURL: srv.URL}, g
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(s string) []tea.KeyMsg {
	var out []tea.KeyMsg
	for _, r := range s {
		out = append(out, keyMsg(string(r)))
	}
	return out
}

func mustContain(t *testing.T, view string, want ...string) {
	t.Helper()
	plain := stripANSI(view)
	for _, w := range want {
		if !strings.Contains(plain, w) {
			t.Errorf("view missing %q:\n%s", w, plain)
		}
	}
}

func ordersPage(items ...map[string]any) map[string]any {
	return map[string]any{"orders": items, "total": 23}
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}
