// Package query adapts a fetch function to a bubbletea model: it tracks
// loading and error state, refetches when its inputs change, and drops
// results that arrive for superseded inputs.
package query

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/naveenspark/vendora/pkg/client"
)

// Fetch loads T for the given token and parameters.
type Fetch[P comparable, T any] func(ctx context.Context, token string, params P) (T, error)

// Result is the message a fetch command resolves to. Pass it to Query.Update.
type Result[T any] struct {
	id   string
	gen  uint64
	data T
	err  error
}

type settings struct {
	name string
	log  logrus.FieldLogger
}

// Option configures a Query.
type Option func(*settings)

// WithName labels the query in log entries.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithLogger sets the logger for fetch failures and dropped results.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// Query holds the state of one parameterized fetch. It must be used by
// pointer from a bubbletea model and is not safe for concurrent use; all
// mutation happens on the bubbletea update goroutine.
type Query[P comparable, T any] struct {
	id    string
	fetch Fetch[P, T]
	log   logrus.FieldLogger

	token   string
	params  P
	started bool
	gen     uint64
	cancel  context.CancelFunc

	data    T
	loading bool
	errMsg  string
	err     error
}

// New returns an idle query around fetch.
func New[P comparable, T any](fetch Fetch[P, T], opts ...Option) *Query[P, T] {
	s := settings{log: discardLogger()}
	for _, o := range opts {
		o(&s)
	}
	id := uuid.NewString()
	log := s.log.WithField("query_id", id)
	if s.name != "" {
		log = log.WithField("query", s.name)
	}
	return &Query[P, T]{id: id, fetch: fetch, log: log}
}

// Data returns the last successfully fetched value.
func (q *Query[P, T]) Data() T { return q.data }

// Loading reports whether a fetch is in flight.
func (q *Query[P, T]) Loading() bool { return q.loading }

// Err returns the operator-facing message of the last failure, or "".
func (q *Query[P, T]) Err() string { return q.errMsg }

// Error returns the underlying error of the last failure.
func (q *Query[P, T]) Error() error { return q.err }

// Params returns the parameters of the current fetch.
func (q *Query[P, T]) Params() P { return q.params }

// Use fetches on first use and whenever token or params differ from the
// previous call. It returns nil when nothing needs to happen.
func (q *Query[P, T]) Use(token string, params P) tea.Cmd {
	if q.started && token == q.token && params == q.params {
		return nil
	}
	q.started = true
	q.token = token
	q.params = params
	return q.Refetch()
}

// Refetch re-runs the fetch with the current token and params.
func (q *Query[P, T]) Refetch() tea.Cmd {
	q.gen++
	q.stop()

	if q.token == "" {
		q.loading = false
		q.err = errNoToken
		q.errMsg = client.NoTokenMessage
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.loading = true
	q.errMsg = ""
	q.err = nil

	id, gen, token, params, fetch := q.id, q.gen, q.token, q.params, q.fetch
	return func() tea.Msg {
		data, err := fetch(ctx, token, params)
		return Result[T]{id: id, gen: gen, data: data, err: err}
	}
}

// Update applies msg if it is a result of this query. It reports whether msg
// belonged to the query, including stale results that were dropped.
func (q *Query[P, T]) Update(msg tea.Msg) bool {
	r, ok := msg.(Result[T])
	if !ok || r.id != q.id {
		return false
	}
	if r.gen != q.gen {
		q.log.WithField("generation", r.gen).Debug("dropped stale result")
		return true
	}

	q.loading = false
	q.stop()
	if r.err != nil {
		q.err = r.err
		q.errMsg = client.Message(r.err)
		q.log.WithError(r.err).Warn("fetch failed")
		return true
	}
	q.data = r.data
	q.errMsg = ""
	q.err = nil
	return true
}

// Close cancels an in-flight fetch; its result will be dropped. The token is
// forgotten, so Refetch sends nothing until the next Use.
func (q *Query[P, T]) Close() {
	q.gen++
	q.stop()
	q.loading = false
	q.token = ""
	q.started = false
}

func (q *Query[P, T]) stop() {
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
}

var errNoToken = errors.New(client.NoTokenMessage)

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
