package ergo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Upstream selects which REST API a request goes to.
type Upstream int

const (
	UpstreamExplorer Upstream = iota
	UpstreamNode
)

func (u Upstream) String() string {
	if u == UpstreamNode {
		return "node"
	}
	return "explorer"
}

const (
	userAgent       = "ergo-analytics-engine/1.0"
	defaultTimeout  = 30 * time.Second
	// The address book lives on a slower host; give it more room.
	addressBookTimeout = 60 * time.Second
)

// UpstreamConfig holds the immutable connection settings for one upstream.
// Initialised once at startup and never mutated afterwards.
type UpstreamConfig struct {
	BaseURL string
	APIKey  string // Node only, sent under the `api_key` header
	Timeout time.Duration
}

// RequestSpec describes a single upstream request. Built per call, short-lived.
type RequestSpec struct {
	Method  string // GET or POST
	Path    string // endpoint path relative to the upstream base URL
	Query   url.Values
	Body    any           // JSON-encoded when non-nil
	Timeout time.Duration // overrides the upstream default when > 0
}

// Client is the uniform gateway over the Explorer and Node REST APIs.
// It issues a single request per call; retry policy belongs to the engines.
type Client struct {
	explorer UpstreamConfig
	node     UpstreamConfig
	httpc    *http.Client
	debug    bool
}

// NewClient builds a gateway from the two upstream configs. Zero timeouts
// fall back to the 30s default.
func NewClient(explorer, node UpstreamConfig) *Client {
	if explorer.Timeout == 0 {
		explorer.Timeout = defaultTimeout
	}
	if node.Timeout == 0 {
		node.Timeout = defaultTimeout
	}
	return &Client{
		explorer: explorer,
		node:     node,
		// Per-request deadlines come from context; the transport itself
		// stays unbounded so the 60s address-book path is not clipped.
		httpc: &http.Client{},
		debug: os.Getenv("LOG_DEBUG") == "1",
	}
}

func (c *Client) upstream(u Upstream) UpstreamConfig {
	if u == UpstreamNode {
		return c.node
	}
	return c.explorer
}

// Call executes spec against the chosen upstream and decodes the JSON body
// into out (which may be nil to discard the body). All failures come back as
// *APIError with a classified kind.
func (c *Client) Call(ctx context.Context, u Upstream, spec RequestSpec, out any) error {
	cfg := c.upstream(u)
	if cfg.BaseURL == "" {
		return NewError(KindTransport, "%s upstream is not configured", u)
	}

	timeout := spec.Timeout
	if timeout == 0 {
		timeout = cfg.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fullURL := strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(spec.Path, "/")
	if len(spec.Query) > 0 {
		fullURL += "?" + spec.Query.Encode()
	}

	var bodyReader io.Reader
	if spec.Body != nil {
		encoded, err := json.Marshal(spec.Body)
		if err != nil {
			return &APIError{Kind: KindDecode, Message: fmt.Sprintf("failed to encode request body for %s", spec.Path), Endpoint: spec.Path, Err: err}
		}
		bodyReader = bytes.NewReader(encoded)
	}

	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: fmt.Sprintf("failed to build request for %s", spec.Path), Endpoint: spec.Path, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if spec.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if u == UpstreamNode && cfg.APIKey != "" {
		req.Header.Set("api_key", cfg.APIKey)
	}

	if c.debug {
		log.Printf("[Gateway] %s %s %s body=%v", u, method, fullURL, spec.Body)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return &APIError{Kind: KindCancelled, Message: fmt.Sprintf("request to %s was cancelled", spec.Path), Endpoint: spec.Path, Err: err}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return &APIError{Kind: KindTransport, Message: fmt.Sprintf("request timeout after %s", timeout), Endpoint: spec.Path, Err: err}
		}
		return &APIError{Kind: KindTransport, Message: fmt.Sprintf("failed to reach %s upstream", u), Endpoint: spec.Path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: fmt.Sprintf("failed to read response from %s", spec.Path), Endpoint: spec.Path, Err: err}
	}

	if resp.StatusCode >= 400 {
		if c.debug {
			log.Printf("[Gateway] %s %s -> %d body=%s", u, spec.Path, resp.StatusCode, obfuscateKey(string(raw), cfg.APIKey))
		}
		kind := KindHTTPStatus
		if resp.StatusCode == http.StatusNotFound {
			kind = KindNotFound
		}
		return &APIError{
			Kind:       kind,
			Message:    fmt.Sprintf("%s %s failed", u, spec.Path),
			StatusCode: resp.StatusCode,
			Endpoint:   spec.Path,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if c.debug {
			log.Printf("[Gateway] %s %s decode error, body=%s", u, spec.Path, obfuscateKey(string(raw), cfg.APIKey))
		}
		return &APIError{Kind: KindDecode, Message: fmt.Sprintf("unexpected response shape from %s", spec.Path), Endpoint: spec.Path, Err: err}
	}
	return nil
}

// obfuscateKey blanks an echoed API key down to its first four characters
// before the value can hit the log sink.
func obfuscateKey(body, key string) string {
	if key == "" || !strings.Contains(body, key) {
		return body
	}
	prefix := key
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return strings.ReplaceAll(body, key, prefix+"****")
}

// GetExplorer issues a GET against the Explorer API.
func (c *Client) GetExplorer(ctx context.Context, path string, query url.Values, out any) error {
	return c.Call(ctx, UpstreamExplorer, RequestSpec{Method: http.MethodGet, Path: path, Query: query}, out)
}

// GetNode issues a GET against the Node API.
func (c *Client) GetNode(ctx context.Context, path string, query url.Values, out any) error {
	return c.Call(ctx, UpstreamNode, RequestSpec{Method: http.MethodGet, Path: path, Query: query}, out)
}

// PostNode issues a POST with a JSON body against the Node API.
func (c *Client) PostNode(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.Call(ctx, UpstreamNode, RequestSpec{Method: http.MethodPost, Path: path, Query: query, Body: body}, out)
}
