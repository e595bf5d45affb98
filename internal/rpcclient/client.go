// Package rpcclient provides a JSON-RPC 1.0 client for zcashd-compatible nodes.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Klingon-tech/zecsend/internal/log"
)

// Defaults for New.
const (
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 3
	DefaultBackoff = time.Second
)

// maxResponseSize bounds the body read from the node.
const maxResponseSize = 32 << 20

var (
	// ErrTransport marks failures that never produced a JSON-RPC response.
	// Only these are retried.
	ErrTransport = errors.New("rpc transport error")
	// ErrUnauthorized is returned when the node rejects the credentials.
	ErrUnauthorized = errors.New("rpc unauthorized")
)

// Client is a JSON-RPC 1.0 HTTP client.
type Client struct {
	endpoint string
	user     string
	password string
	http     *http.Client
	retries  int
	backoff  time.Duration
	nextID   atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithBasicAuth sets the rpcuser/rpcpassword credentials.
func WithBasicAuth(user, password string) Option {
	return func(c *Client) {
		c.user = user
		c.password = password
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetries sets the total number of attempts per call. Values below 1
// mean a single attempt.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = max(n, 1) }
}

// WithBackoff sets the base delay of the linear backoff between attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a new RPC client targeting the given endpoint URL.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: DefaultTimeout},
		retries:  DefaultRetries,
		backoff:  DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// request is a JSON-RPC 1.0 request.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// response is a JSON-RPC 1.0 response.
type response struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
	ID     uint64          `json:"id"`
}

// RPCError is returned when the node responds with an error. It is
// surfaced unchanged and never retried.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call invokes a JSON-RPC method and unmarshals the result into the provided pointer.
// If result is nil, the response result is discarded.
//
// Transport failures are retried with a linear backoff; RPC errors and
// context cancellation end the call immediately.
func (c *Client) Call(ctx context.Context, method string, params []any, result any) error {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(request{
		JSONRPC: "1.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		err = c.do(ctx, body, result)
		if err == nil || !errors.Is(err, ErrTransport) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt+1 >= c.retries {
			return err
		}

		wait := time.Duration(attempt+1) * c.backoff
		log.Gateway.Warn().
			Err(err).
			Str("method", method).
			Int("attempt", attempt+1).
			Dur("backoff", wait).
			Msg("RPC call failed, retrying")

		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func (c *Client) do(ctx context.Context, body []byte, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" || c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: http %d", ErrUnauthorized, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	// zcashd answers RPC errors with HTTP 500 and a JSON body, so the body
	// is decoded before the status is judged.
	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: http %d", ErrTransport, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected http status %d", resp.StatusCode)
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: http %d", ErrTransport, resp.StatusCode)
	}

	if result != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
