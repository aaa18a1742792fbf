package tools

import (
	"context"

	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/internal/response"
	"github.com/ergoscope/analytics-engine/pkg/models"
)

// GetBox fetches a box by id, preferring the Node index and falling back to
// the Explorer.
func (s *Service) GetBox(ctx context.Context, boxID string) *response.Response {
	r := response.New()
	if boxID == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "box id must not be empty"))
	}

	box, err := s.client.NodeBoxByID(ctx, boxID)
	if err != nil {
		box, err = s.client.ExplorerBox(ctx, boxID)
		if err != nil {
			return s.fail(r, err)
		}
	}
	return s.finalize(r.Success(box))
}

// GetBoxByIndex fetches a box by its global index number.
func (s *Service) GetBoxByIndex(ctx context.Context, index int64) *response.Response {
	r := response.New()
	if index < 0 {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "index must be >= 0"))
	}
	box, err := s.client.NodeBoxByIndex(ctx, index)
	if err != nil {
		return s.fail(r, err)
	}
	return s.finalize(r.Success(box))
}

// GetBoxesByToken returns one page of boxes carrying a token, spent
// included. unspentOnly narrows to the UTXO set.
func (s *Service) GetBoxesByToken(ctx context.Context, tokenID string, offset, limit int, unspentOnly bool) *response.Response {
	r := response.New()
	if tokenID == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "token id must not be empty"))
	}
	limit = s.clampBoxLimit(limit)

	fetch := s.client.BoxesByTokenID
	if unspentOnly {
		fetch = s.client.UnspentBoxesByTokenID
	}
	items, total, err := fetch(ctx, tokenID, offset, limit)
	if err != nil {
		return s.fail(r, err)
	}
	if items == nil {
		items = []models.Box{}
	}
	return s.finalize(r.Success(Paged[models.Box]{Items: items, Total: total}))
}

// GetBoxesByAddress returns one page of boxes ever guarded by an address.
// unspentOnly narrows to the UTXO set.
func (s *Service) GetBoxesByAddress(ctx context.Context, address string, offset, limit int, unspentOnly bool) *response.Response {
	r := response.New()
	if address == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "address must not be empty"))
	}
	limit = s.clampBoxLimit(limit)

	fetch := s.client.BoxesByAddress
	if unspentOnly {
		fetch = s.client.UnspentBoxesByAddress
	}
	items, total, err := fetch(ctx, address, offset, limit)
	if err != nil {
		return s.fail(r, err)
	}
	if items == nil {
		items = []models.Box{}
	}
	return s.finalize(r.Success(Paged[models.Box]{Items: items, Total: total}))
}

// GetBoxesByErgoTree returns one page of boxes guarded by a script.
func (s *Service) GetBoxesByErgoTree(ctx context.Context, ergoTree string, offset, limit int, unspentOnly bool) *response.Response {
	r := response.New()
	if ergoTree == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "ergo tree must not be empty"))
	}
	limit = s.clampBoxLimit(limit)

	fetch := s.client.BoxesByErgoTree
	if unspentOnly {
		fetch = s.client.UnspentBoxesByErgoTree
	}
	items, total, err := fetch(ctx, ergoTree, offset, limit)
	if err != nil {
		return s.fail(r, err)
	}
	if items == nil {
		items = []models.Box{}
	}
	return s.finalize(r.Success(Paged[models.Box]{Items: items, Total: total}))
}

func (s *Service) clampBoxLimit(limit int) int {
	ceiling := s.limits.For("boxes")
	if limit < 1 || limit > ceiling {
		return ceiling
	}
	return limit
}
