package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/pkg/config"
	"github.com/noah-isme/sma-odoo-sync/pkg/middleware/requestid"
)

const (
	pathCallKW         = "/web/dataset/call_kw"
	pathAuthenticate   = "/web/session/authenticate"
	pathSessionInfo    = "/web/session/get_session_info"
	pathDestroySession = "/web/session/destroy"
	pathDatabaseList   = "/web/database/list"

	sessionHeader = "X-Openerp-Session-Id"
	sessionCookie = "session_id"
)

// Observer receives timing for every RPC round trip.
type Observer interface {
	ObserveRPC(model, method, outcome string, duration time.Duration)
}

// Client talks JSON-RPC 2.0 to an Odoo server and keeps the current session id.
type Client struct {
	baseURL       string
	database      string
	httpClient    *http.Client
	healthTimeout time.Duration
	logger        *zap.Logger
	observer      Observer

	mu        sync.RWMutex
	sessionID string
	onExpired func()

	nextID atomic.Int64
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver attaches an RPC timing observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient builds a client for the configured Odoo instance.
func NewClient(cfg config.OdooConfig, opts ...Option) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	health := cfg.HealthTimeout
	if health <= 0 {
		health = 5 * time.Second
	}
	c := &Client{
		baseURL:       cfg.Host,
		database:      cfg.Database,
		httpClient:    &http.Client{Timeout: timeout},
		healthTimeout: health,
		logger:        zap.NewNop(),
	}
	c.nextID.Store(time.Now().UnixMilli())
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Database returns the configured database name.
func (c *Client) Database() string { return c.database }

// SessionID returns the session id used for authenticated calls.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// SetSessionID installs a session id, e.g. one restored from storage.
func (c *Client) SetSessionID(sid string) {
	c.mu.Lock()
	c.sessionID = sid
	c.mu.Unlock()
}

// OnSessionExpired registers the single handler invoked when the server rejects the session.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	c.onExpired = fn
	c.mu.Unlock()
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

type callKWParams struct {
	Model  string                 `json:"model"`
	Method string                 `json:"method"`
	Args   []interface{}          `json:"args"`
	KWArgs map[string]interface{} `json:"kwargs"`
}

// callKW executes a model method through /web/dataset/call_kw.
func (c *Client) callKW(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}, out interface{}) error {
	if args == nil {
		args = []interface{}{}
	}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	start := time.Now()
	_, err := c.do(ctx, pathCallKW, callKWParams{Model: model, Method: method, Args: args, KWArgs: kwargs}, true, out)
	c.observe(model, method, err, time.Since(start))
	return err
}

func (c *Client) observe(model, method string, err error, d time.Duration) {
	if c.observer == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case IsSessionExpired(err):
		outcome = "session_expired"
	case IsTransport(err):
		outcome = "transport_error"
	default:
		outcome = "rpc_error"
	}
	c.observer.ObserveRPC(model, method, outcome, d)
}

// do posts a JSON-RPC envelope and decodes the result into out. The response
// cookies are returned so authentication can pick up the session id.
func (c *Client) do(ctx context.Context, path string, params interface{}, auth bool, out interface{}) ([]*http.Cookie, error) {
	sid := c.SessionID()
	if auth && sid == "" {
		return nil, ErrNoSession
	}

	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: "call", Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if sid != "" {
		req.Header.Set(sessionHeader, sid)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sid})
	}

	logger := c.logger
	if reqID := requestid.FromContext(ctx); reqID != "" {
		logger = logger.With(zap.String("request_id", reqID))
	}
	logger.Debug("odoo request", zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http %d %s", ErrTransport, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var envelope rpcResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		snippet := raw
		if len(snippet) > 100 {
			snippet = snippet[:100]
		}
		return nil, fmt.Errorf("%w: invalid json response: %s", ErrTransport, snippet)
	}

	if len(envelope.Error) > 0 && !isFalsy(envelope.Error) {
		rpcErr := &Error{raw: envelope.Error}
		if err := json.Unmarshal(envelope.Error, rpcErr); err != nil {
			rpcErr.Message = string(envelope.Error)
		}
		if auth && rpcErr.detectSessionExpired() {
			rpcErr.SessionExpired = true
			c.expire(sid)
			logger.Info("odoo session rejected", zap.String("path", path))
		} else {
			logger.Debug("odoo error", zap.String("path", path), zap.String("message", rpcErr.UserMessage()))
		}
		return resp.Cookies(), rpcErr
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return resp.Cookies(), fmt.Errorf("decode result of %s: %w", path, err)
		}
	}
	return resp.Cookies(), nil
}

// expire clears the session and fires the handler once per session id.
func (c *Client) expire(sid string) {
	c.mu.Lock()
	if c.sessionID != sid || sid == "" {
		c.mu.Unlock()
		return
	}
	c.sessionID = ""
	handler := c.onExpired
	c.mu.Unlock()
	if handler != nil {
		handler()
	}
}
