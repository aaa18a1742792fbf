package ergo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(explorerURL, nodeURL, apiKey string) *Client {
	return NewClient(
		UpstreamConfig{BaseURL: explorerURL},
		UpstreamConfig{BaseURL: nodeURL, APIKey: apiKey},
	)
}

func TestCall_NodeRequestCarriesAPIKeyAndUserAgent(t *testing.T) {
	var gotKey, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api_key")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"name":"ergo-node"}`))
	}))
	defer server.Close()

	c := testClient("", server.URL, "secret-key-123")
	var out struct {
		Name string `json:"name"`
	}
	if err := c.GetNode(context.Background(), "info", nil, &out); err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}

	if gotKey != "secret-key-123" {
		t.Errorf("Expected api_key header on node requests. Got: %q", gotKey)
	}
	if gotAgent != userAgent {
		t.Errorf("Expected User-Agent %q. Got: %q", userAgent, gotAgent)
	}
	if out.Name != "ergo-node" {
		t.Errorf("Expected decoded body. Got: %+v", out)
	}
}

func TestCall_ExplorerRequestOmitsAPIKey(t *testing.T) {
	var sawKey bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawKey = r.Header.Get("api_key") != ""
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := testClient(server.URL, "", "")
	if err := c.GetExplorer(context.Background(), "info", nil, nil); err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if sawKey {
		t.Error("Expected no api_key header on explorer requests")
	}
}

func TestCall_404ClassifiedAsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such transaction", http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(server.URL, "", "")
	err := c.GetExplorer(context.Background(), "transactions/deadbeef", nil, nil)

	apiErr := AsAPIError(err)
	if apiErr == nil {
		t.Fatal("Expected an APIError")
	}
	if apiErr.Kind != KindNotFound {
		t.Errorf("Expected not_found kind for 404. Got: %v", apiErr.Kind)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status code 404. Got: %d", apiErr.StatusCode)
	}
	if !IsNotFound(err) {
		t.Error("Expected IsNotFound to report true")
	}
}

func TestCall_ServerErrorClassifiedAsHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := testClient(server.URL, "", "")
	err := c.GetExplorer(context.Background(), "info", nil, nil)

	apiErr := AsAPIError(err)
	if apiErr.Kind != KindHTTPStatus {
		t.Errorf("Expected http_status kind for 500. Got: %v", apiErr.Kind)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status code 500. Got: %d", apiErr.StatusCode)
	}
}

func TestCall_MalformedBodyClassifiedAsDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	c := testClient(server.URL, "", "")
	var out map[string]any
	err := c.GetExplorer(context.Background(), "info", nil, &out)

	apiErr := AsAPIError(err)
	if apiErr.Kind != KindDecode {
		t.Errorf("Expected decode_failure kind for a non-JSON body. Got: %v", apiErr.Kind)
	}
}

func TestCall_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(server.URL, "", "")
	err := c.GetExplorer(ctx, "info", nil, nil)

	apiErr := AsAPIError(err)
	if apiErr.Kind != KindCancelled {
		t.Errorf("Expected cancelled kind. Got: %v", apiErr.Kind)
	}
}

func TestCall_UnconfiguredUpstream(t *testing.T) {
	c := testClient("", "", "")
	err := c.GetExplorer(context.Background(), "info", nil, nil)

	apiErr := AsAPIError(err)
	if apiErr == nil || apiErr.Kind != KindTransport {
		t.Errorf("Expected transport_failure for a missing base URL. Got: %v", err)
	}
}

func TestObfuscateKey(t *testing.T) {
	body := `{"error":"bad api_key secret-key-123"}`

	got := obfuscateKey(body, "secret-key-123")
	if got != `{"error":"bad api_key secr****"}` {
		t.Errorf("Expected the key reduced to a 4-char prefix. Got: %s", got)
	}

	if got := obfuscateKey(body, ""); got != body {
		t.Errorf("Expected body untouched with no key configured. Got: %s", got)
	}
	if got := obfuscateKey("clean body", "secret-key-123"); got != "clean body" {
		t.Errorf("Expected body without the key untouched. Got: %s", got)
	}
}

func TestFlexiblePage_BothShapes(t *testing.T) {
	var bare flexiblePage[int]
	if err := bare.UnmarshalJSON([]byte(`[1,2,3]`)); err != nil {
		t.Fatalf("Expected bare array to decode. Got: %v", err)
	}
	if len(bare.Items) != 3 || bare.Total != 3 {
		t.Errorf("Expected 3 items and total 3. Got: %d items, total %d", len(bare.Items), bare.Total)
	}

	var wrapped flexiblePage[int]
	if err := wrapped.UnmarshalJSON([]byte(`{"items":[1,2],"total":42}`)); err != nil {
		t.Fatalf("Expected wrapped envelope to decode. Got: %v", err)
	}
	if len(wrapped.Items) != 2 || wrapped.Total != 42 {
		t.Errorf("Expected 2 items and total 42. Got: %d items, total %d", len(wrapped.Items), wrapped.Total)
	}
}
