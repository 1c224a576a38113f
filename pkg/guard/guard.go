// Package guard attaches the session token to outgoing requests and turns
// HTTP 401 responses into a single session invalidation.
package guard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/session"
)

// Call describes how a guarded request was issued.
type Call struct {
	// Authenticated is false when no token was available and the request went out without one.
	Authenticated bool
	// Expired is true when this call's 401 is the one that ended the session.
	Expired  bool
	Status   int
	Duration time.Duration
}

// Guard wraps the HTTP core for every authenticated domain call.
type Guard struct {
	client *client.Client
	store  *session.Store
	log    logrus.FieldLogger

	mu        sync.Mutex
	onExpired []func()
}

// New creates a guard around c that reads and invalidates store.
func New(c *client.Client, store *session.Store, log logrus.FieldLogger) *Guard {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Guard{client: c, store: store, log: log}
}

// OnExpired registers fn to run once each time a session is ended by a 401.
func (g *Guard) OnExpired(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onExpired = append(g.onExpired, fn)
}

// Do implements client.Doer.
func (g *Guard) Do(ctx context.Context, req client.Request, out any) error {
	_, err := g.DoCall(ctx, req, out)
	return err
}

// DoCall is Do plus the call metadata.
func (g *Guard) DoCall(ctx context.Context, req client.Request, out any) (Call, error) {
	req, call := g.prepare(req)
	start := time.Now()
	err := g.client.Do(ctx, req, out)
	return g.finish(req, call, start, err)
}

// Raw is the guarded form of client.Raw.
func (g *Guard) Raw(ctx context.Context, req client.Request) (*client.Blob, error) {
	req, call := g.prepare(req)
	start := time.Now()
	blob, err := g.client.Raw(ctx, req)
	if _, err := g.finish(req, call, start, err); err != nil {
		return nil, err
	}
	return blob, nil
}

func (g *Guard) prepare(req client.Request) (client.Request, Call) {
	if req.Anonymous {
		req.Token = ""
		return req, Call{}
	}
	if req.Token == "" {
		req.Token = g.store.Token()
	}
	return req, Call{Authenticated: req.Token != ""}
}

func (g *Guard) finish(req client.Request, call Call, start time.Time, err error) (Call, error) {
	call.Duration = time.Since(start)
	entry := g.log.WithFields(logrus.Fields{
		"method":        methodOrGet(req.Method),
		"path":          req.Path,
		"authenticated": call.Authenticated,
		"duration_ms":   call.Duration.Milliseconds(),
	})

	if err == nil {
		call.Status = http.StatusOK
		if call.Authenticated {
			g.store.UpdateActivity()
		}
		entry.Debug("api call")
		return call, nil
	}

	apiErr, ok := client.AsAPIError(err)
	if !ok {
		entry.WithError(err).Warn("api call failed")
		return call, err
	}
	call.Status = apiErr.StatusCode
	entry = entry.WithFields(logrus.Fields{
		"status":     apiErr.StatusCode,
		"kind":       apiErr.Kind,
		"request_id": apiErr.RequestID,
	})

	if apiErr.StatusCode != http.StatusUnauthorized || req.Anonymous {
		entry.WithError(err).Info("api call failed")
		return call, err
	}

	if g.store.Expire(req.Token) {
		call.Expired = true
		entry.Warn("session expired, signed out")
		g.fireExpired()
	} else {
		entry.Debug("401 after session already ended")
	}
	return call, &client.APIError{
		Kind:       client.KindAuthExpired,
		Message:    client.SessionExpiredMessage,
		StatusCode: http.StatusUnauthorized,
		RequestID:  apiErr.RequestID,
		Err:        err,
	}
}

func (g *Guard) fireExpired() {
	g.mu.Lock()
	hooks := append([]func(){}, g.onExpired...)
	g.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// ErrNoToken is returned by Require when no session is present.
var ErrNoToken = errors.New(client.NoTokenMessage)

// Require returns the current token or ErrNoToken.
func (g *Guard) Require() (string, error) {
	if tok := g.store.Token(); tok != "" {
		return tok, nil
	}
	return "", ErrNoToken
}

func methodOrGet(m string) string {
	if m == "" {
		return http.MethodGet
	}
	return m
}
