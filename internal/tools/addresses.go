package tools

import (
	"context"

	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/internal/response"
	"github.com/ergoscope/analytics-engine/pkg/models"
)

// Paged is the {items, total} shape shared by history-style tools.
type Paged[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// GetAddressBalance returns the confirmed and unconfirmed position of an
// address, composed from the Node balance index.
func (s *Service) GetAddressBalance(ctx context.Context, address string) *response.Response {
	r := response.New()
	if address == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "address must not be empty"))
	}

	balance, err := s.client.NodeBalance(ctx, address)
	if err != nil {
		// The Node extra index may be disabled; the Explorer confirmed
		// balance still answers the common case.
		confirmed, expErr := s.client.ConfirmedBalance(ctx, address)
		if expErr != nil {
			return s.fail(r, err)
		}
		balance = &models.AddressBalance{
			Address:     address,
			Confirmed:   *confirmed,
			Unconfirmed: models.BalanceSnapshot{Tokens: []models.TokenAmount{}},
		}
	}
	return s.finalize(r.Success(balance))
}

// GetAddressHistory returns one page of an address's transaction history
// from the Explorer.
func (s *Service) GetAddressHistory(ctx context.Context, address string, offset, limit int) *response.Response {
	r := response.New()
	ceiling := s.limits.For("address_transactions")
	if address == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "address must not be empty"))
	}
	if offset < 0 {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "offset must be >= 0"))
	}
	if limit < 1 || limit > ceiling {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "limit must be between 1 and %d", ceiling))
	}

	items, total, err := s.client.AddressTransactions(ctx, address, offset, limit)
	if err != nil {
		return s.fail(r, err)
	}
	if items == nil {
		items = []models.Transaction{}
	}
	return s.finalize(r.Success(Paged[models.Transaction]{Items: items, Total: total}))
}

// GetAddressInteractions returns transactions touching an address from the
// Node index, which also covers mempool-only interactions.
func (s *Service) GetAddressInteractions(ctx context.Context, address string, offset, limit int) *response.Response {
	r := response.New()
	if address == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "address must not be empty"))
	}
	if limit < 1 {
		limit = s.limits.For("address_transactions")
	}

	items, total, err := s.client.NodeTransactionsByAddress(ctx, address, offset, limit)
	if err != nil {
		return s.fail(r, err)
	}
	if items == nil {
		items = []models.Transaction{}
	}
	return s.finalize(r.Success(Paged[models.Transaction]{Items: items, Total: total}))
}

// AnalyzeAddress runs the bounded BFS tracer from a seed address.
func (s *Service) AnalyzeAddress(ctx context.Context, address string, depth, txLimit int) *response.Response {
	r := response.New()
	report, err := s.tracer.Trace(ctx, address, depth, txLimit)
	if err != nil {
		return s.fail(r, err)
	}
	return s.finalize(r.Success(report))
}

// GetAddressBook serves the known-address feed, falling back to the disk
// snapshot when the live host is unreachable.
func (s *Service) GetAddressBook(ctx context.Context) *response.Response {
	r := response.New()
	book, fromFallback, err := s.addressBook.Fetch(ctx)
	if err != nil {
		return s.fail(r, err)
	}
	r.Success(book)
	if fromFallback {
		r.WithMessage("address book served from local fallback snapshot")
	}
	return s.finalize(r)
}
