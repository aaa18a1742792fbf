package ergo

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/ergoscope/analytics-engine/pkg/models"
)

// The address book lives on a separate host from the Explorer API and its
// availability is not guaranteed. When it cannot be reached, a read-only
// disk snapshot stands in so the tool surface never goes dark.

const defaultAddressBookURL = "https://api.ergexplorer.com/addressbook/getAddresses"

// AddressBookSource fetches the known-address feed with a disk fallback.
type AddressBookSource struct {
	URL          string
	FallbackPath string // resources/address_book_fallback.json
	httpc        *http.Client
}

// NewAddressBookSource wires the feed URL and the snapshot path. Empty
// arguments fall back to the defaults.
func NewAddressBookSource(url, fallbackPath string) *AddressBookSource {
	if url == "" {
		url = defaultAddressBookURL
	}
	if fallbackPath == "" {
		fallbackPath = "resources/address_book_fallback.json"
	}
	return &AddressBookSource{
		URL:          url,
		FallbackPath: fallbackPath,
		httpc:        &http.Client{},
	}
}

// Fetch returns the live address book, or the disk snapshot when the feed is
// unreachable. The bool reports whether the fallback was served.
func (s *AddressBookSource) Fetch(ctx context.Context) (*models.AddressBook, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, addressBookTimeout)
	defer cancel()

	book, err := s.fetchLive(ctx)
	if err == nil {
		return book, false, nil
	}
	log.Printf("[AddressBook] Live fetch failed, serving disk snapshot: %v", err)

	book, ferr := s.readSnapshot()
	if ferr != nil {
		return nil, false, NewError(KindTransport, "address book unavailable and no usable snapshot on disk")
	}
	if book.Note == "" {
		book.Note = "served from local fallback snapshot; live address book was unreachable"
	}
	return book, true, nil
}

func (s *AddressBookSource) fetchLive(ctx context.Context) (*models.AddressBook, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, &APIError{Kind: KindHTTPStatus, Message: "address book fetch failed", StatusCode: resp.StatusCode}
	}

	var book models.AddressBook
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		return nil, &APIError{Kind: KindDecode, Message: "unexpected address book shape", Err: err}
	}
	return &book, nil
}

func (s *AddressBookSource) readSnapshot() (*models.AddressBook, error) {
	raw, err := os.ReadFile(s.FallbackPath)
	if err != nil {
		return nil, err
	}
	var book models.AddressBook
	if err := json.Unmarshal(raw, &book); err != nil {
		return nil, err
	}
	return &book, nil
}
