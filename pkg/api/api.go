// Package api exposes the admin backend endpoints as typed calls.
//
// Every method is stateless: it takes the bearer token explicitly (an empty
// token lets a guard.Guard fill in the session token) and returns either the
// decoded payload or an error wrapping a *client.APIError.
package api

import (
	"context"
	"net/url"

	"github.com/naveenspark/vendora/pkg/client"
)

// Transport is satisfied by *client.Client and *guard.Guard.
type Transport interface {
	Do(ctx context.Context, req client.Request, out any) error
	Raw(ctx context.Context, req client.Request) (*client.Blob, error)
}

// Client issues domain calls over a Transport.
type Client struct {
	t Transport
}

// New returns a Client that sends requests through t.
func New(t Transport) *Client {
	return &Client{t: t}
}

// Pagination is embedded in every list parameter struct.
type Pagination struct {
	Page  int `url:"page,omitempty"`
	Limit int `url:"limit,omitempty"`
}

func (c *Client) get(ctx context.Context, token, path string, q any, out any) error {
	return c.t.Do(ctx, client.Request{Method: "GET", Path: path, Query: q, Token: token}, out)
}

func (c *Client) send(ctx context.Context, method, token, path string, body any, out any) error {
	return c.t.Do(ctx, client.Request{Method: method, Path: path, Body: body, Token: token}, out)
}

func resource(base, id string) string {
	return base + "/" + url.PathEscape(id)
}
