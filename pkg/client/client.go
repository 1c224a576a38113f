package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds every request unless overridden with WithTimeout.
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 1 << 20  // 1 MB
	maxBody      = 32 << 20 // 32 MB

	headerRequestID = "X-Request-ID"
)

// maxBlob caps Raw responses; anything larger is rejected, not truncated.
var maxBlob int64 = 100 << 20 // 100 MB

// Request describes one call against the API.
type Request struct {
	Method string
	Path   string // relative to the base URL, may carry its own query
	Query  any    // see EncodeQuery
	Body   any    // JSON-encoded unless *Multipart or io.Reader
	Token  string // bearer token; omitted when empty
	// Anonymous requests carry no token and a 401 is an ordinary failure,
	// as for the login call itself.
	Anonymous bool
}

// Doer executes a request and decodes the JSON response into out (if non-nil).
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

// Blob is a non-JSON response body such as a CSV export.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Client is the HTTP core of the API SDK. It never reads or writes session state.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	defaultMessage string
	log            logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithDefaultMessage sets the message used when an error body cannot be parsed.
func WithDefaultMessage(msg string) Option {
	return func(c *Client) {
		if msg != "" {
			c.defaultMessage = msg
		}
	}
}

// WithLogger sets the logger used for transport diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a new API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		defaultMessage: DefaultErrorMessage,
		log:            discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API origin the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req and decodes a JSON response into out.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, reqID, err := c.send(ctx, req, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // drain for keep-alive
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return c.networkError(reqID, fmt.Errorf("read body: %w", err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Kind: KindDecode, Message: c.defaultMessage, RequestID: reqID, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Raw sends req and returns the undecoded body.
func (c *Client) Raw(ctx context.Context, req Request) (*Blob, error) {
	resp, reqID, err := c.send(ctx, req, "*/*")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBlob+1))
	if err != nil {
		return nil, c.networkError(reqID, fmt.Errorf("read body: %w", err))
	}
	if int64(len(data)) > maxBlob {
		return nil, &APIError{Kind: KindDecode, Message: c.defaultMessage, RequestID: reqID, Err: fmt.Errorf("response larger than %d bytes", maxBlob)}
	}
	blob := &Blob{Data: data, ContentType: resp.Header.Get("Content-Type")}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			blob.Filename = params["filename"]
		}
	}
	return blob, nil
}

// send builds and executes the request. Non-2xx responses are consumed and
// returned as *APIError; the caller owns the body of a 2xx response.
func (c *Client) send(ctx context.Context, req Request, accept string) (*http.Response, string, error) {
	reqID := uuid.NewString()

	target := c.baseURL + req.Path
	qs, err := EncodeQuery(req.Query)
	if err != nil {
		return nil, reqID, &APIError{Kind: KindRequest, Message: c.defaultMessage, RequestID: reqID, Err: err}
	}
	if qs != "" {
		sep := "?"
		if strings.Contains(req.Path, "?") {
			sep = "&"
		}
		target += sep + qs
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, reqID, &APIError{Kind: KindRequest, Message: c.defaultMessage, RequestID: reqID, Err: err}
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, reqID, &APIError{Kind: KindRequest, Message: c.defaultMessage, RequestID: reqID, Err: fmt.Errorf("create request: %w", err)}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set(headerRequestID, reqID)
	if req.Token != "" && !req.Anonymous {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, reqID, c.networkError(reqID, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close() //nolint:errcheck // best-effort close
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := c.defaultMessage
		if readErr == nil {
			msg = parseErrorMessage(respBody, c.defaultMessage)
		}
		c.log.WithFields(logrus.Fields{
			"method":     method,
			"path":       req.Path,
			"status":     resp.StatusCode,
			"request_id": reqID,
		}).Debug("api error response")
		return nil, reqID, &APIError{Kind: KindHTTP, Message: msg, StatusCode: resp.StatusCode, RequestID: reqID}
	}
	return resp, reqID, nil
}

func (c *Client) networkError(reqID string, err error) *APIError {
	c.log.WithError(err).WithField("request_id", reqID).Debug("api transport failure")
	return &APIError{Kind: KindNetwork, Message: NetworkErrorMessage, RequestID: reqID, Err: err}
}

// parseErrorMessage extracts the message from an error body such as
// {"message": "..."}, {"error": "..."} or {"error": {"message": "..."}}.
func parseErrorMessage(body []byte, fallback string) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	if s := rawString(payload["message"]); s != "" {
		return s
	}
	raw, ok := payload["error"]
	if !ok {
		return fallback
	}
	if s := rawString(raw); s != "" {
		return s
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &nested) == nil && nested.Message != "" {
		return nested.Message
	}
	return fallback
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		return b.encode()
	case io.Reader:
		return b, "application/octet-stream", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("marshal body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
