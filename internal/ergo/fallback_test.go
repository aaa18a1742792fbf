package ergo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "address_book_fallback.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write snapshot fixture: %v", err)
	}
	return path
}

func TestAddressBookFetch_Live(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"address":"9abc","name":"Spectrum"}],"total":1,"tokens":[]}`))
	}))
	defer server.Close()

	source := NewAddressBookSource(server.URL, writeSnapshot(t, `{"items":[],"total":0,"tokens":[]}`))
	book, fromFallback, err := source.Fetch(context.Background())

	if err != nil {
		t.Fatalf("Expected no error. Got: %v", err)
	}
	if fromFallback {
		t.Error("Expected live data, not the fallback")
	}
	if len(book.Items) != 1 || book.Items[0].Name != "Spectrum" {
		t.Errorf("Expected the live entry. Got: %+v", book.Items)
	}
}

func TestAddressBookFetch_ServesSnapshotWhenLiveIsDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer server.Close()

	snapshot := writeSnapshot(t, `{"items":[{"address":"9xyz","name":"SigmaUSD Bank"}],"total":1,"tokens":[]}`)
	source := NewAddressBookSource(server.URL, snapshot)
	book, fromFallback, err := source.Fetch(context.Background())

	if err != nil {
		t.Fatalf("Expected snapshot to stand in without error. Got: %v", err)
	}
	if !fromFallback {
		t.Error("Expected fromFallback=true when the live feed fails")
	}
	if len(book.Items) != 1 || book.Items[0].Address != "9xyz" {
		t.Errorf("Expected the snapshot entry. Got: %+v", book.Items)
	}
	if book.Note == "" {
		t.Error("Expected a note explaining the fallback was served")
	}
}

func TestAddressBookFetch_NoLiveNoSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source := NewAddressBookSource(server.URL, filepath.Join(t.TempDir(), "missing.json"))
	_, _, err := source.Fetch(context.Background())

	if err == nil {
		t.Fatal("Expected an error when both the feed and the snapshot are unavailable")
	}
	apiErr := AsAPIError(err)
	if apiErr.Kind != KindTransport {
		t.Errorf("Expected transport_failure kind. Got: %v", apiErr.Kind)
	}
}

func TestAddressBookFetch_RepoSnapshotParses(t *testing.T) {
	// The checked-in snapshot must stay decodable; it is the last line of
	// defence when the feed host is down.
	raw, err := os.ReadFile("../../resources/address_book_fallback.json")
	if err != nil {
		t.Skipf("snapshot not present: %v", err)
	}
	source := &AddressBookSource{FallbackPath: "../../resources/address_book_fallback.json"}
	book, err := source.readSnapshot()
	if err != nil {
		t.Fatalf("Expected the shipped snapshot to decode. Got: %v", err)
	}
	if len(raw) == 0 || len(book.Items) == 0 {
		t.Error("Expected the shipped snapshot to carry entries")
	}
	if book.Total != len(book.Items) {
		t.Errorf("Expected total to match item count. Got: total=%d items=%d", book.Total, len(book.Items))
	}
}
