package tools

import (
	"context"
	"encoding/json"

	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/internal/response"
	"github.com/ergoscope/analytics-engine/pkg/models"
)

// GetTransaction fetches a transaction, preferring the Explorer view (it
// resolves input values) and falling back to the Node index.
func (s *Service) GetTransaction(ctx context.Context, txID string) *response.Response {
	r := response.New()
	if txID == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "transaction id must not be empty"))
	}

	tx, err := s.client.TransactionByID(ctx, txID)
	if err != nil {
		tx, err = s.client.NodeTransactionByID(ctx, txID)
		if err != nil {
			return s.fail(r, err)
		}
	}
	return s.finalize(r.Success(tx))
}

// GetTransactionByIndex fetches a transaction by its global index number.
func (s *Service) GetTransactionByIndex(ctx context.Context, index int64) *response.Response {
	r := response.New()
	if index < 0 {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "index must be >= 0"))
	}
	tx, err := s.client.NodeTransactionByIndex(ctx, index)
	if err != nil {
		return s.fail(r, err)
	}
	return s.finalize(r.Success(tx))
}

// GetBlock fetches one block by id.
func (s *Service) GetBlock(ctx context.Context, blockID string) *response.Response {
	r := response.New()
	if blockID == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "block id must not be empty"))
	}
	block, err := s.client.BlockByID(ctx, blockID)
	if err != nil {
		return s.fail(r, err)
	}
	return s.finalize(r.Success(block))
}

// GetBlockByHeight fetches the block at an exact height. Height 0 is the
// genesis block, so negative values are the only invalid input.
func (s *Service) GetBlockByHeight(ctx context.Context, height int) *response.Response {
	r := response.New()
	if height < 0 {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "height must be >= 0"))
	}
	blocks, err := s.client.BlocksAtHeight(ctx, height)
	if err != nil {
		return s.fail(r, err)
	}
	if len(blocks) == 0 {
		return s.fail(r, ergo.NewError(ergo.KindNotFound, "no block found at height %d", height))
	}
	return s.finalize(r.Success(blocks[0]))
}

// GetLatestBlocks returns the most recent blocks, newest first.
func (s *Service) GetLatestBlocks(ctx context.Context, limit int) *response.Response {
	r := response.New()
	ceiling := s.limits.For("blocks")
	if limit < 1 || limit > ceiling {
		limit = ceiling
	}
	blocks, err := s.client.LatestBlocks(ctx, limit)
	if err != nil {
		return s.fail(r, err)
	}
	return s.finalize(r.Success(blocks))
}

// GetBlockTransactions returns one page of a block's transactions.
func (s *Service) GetBlockTransactions(ctx context.Context, blockID string, offset, limit int) *response.Response {
	r := response.New()
	if blockID == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "block id must not be empty"))
	}
	if limit < 1 {
		limit = s.limits.For("transactions")
	}
	items, total, err := s.client.BlockTransactions(ctx, blockID, offset, limit)
	if err != nil {
		return s.fail(r, err)
	}
	if items == nil {
		items = []models.Transaction{}
	}
	return s.finalize(r.Success(Paged[models.Transaction]{Items: items, Total: total}))
}

// BlockchainStatus composes Node info and Explorer network state into one
// view. Either upstream alone is enough to answer; only a double failure
// errors out.
func (s *Service) BlockchainStatus(ctx context.Context) *response.Response {
	r := response.New()
	status := models.NetworkStatus{}
	populated := false

	if info, err := s.client.GetNodeInfo(ctx); err == nil {
		status.Height = info.FullHeight
		status.Difficulty = info.Difficulty
		status.NodeVersion = info.AppVersion
		status.PeersCount = info.PeersCount
		status.IsMining = info.IsMining
		// Hashrate from difficulty over the 120s block target.
		status.Hashrate = float64(info.Difficulty) / 120.0
		populated = true

		if indexed, _, err := s.client.IndexedHeight(ctx); err == nil {
			status.IndexedHeight = indexed
		}
	}

	if expInfo, err := s.client.GetExplorerInfo(ctx); err == nil {
		status.Supply = expInfo.Supply
		if expInfo.HashRate > 0 {
			status.Hashrate = expInfo.HashRate
		}
		populated = true
	}
	if netState, err := s.client.GetNetworkState(ctx); err == nil {
		if status.Height == 0 {
			status.Height = netState.Height
		}
		populated = true
	}

	if !populated {
		return s.fail(r, ergo.NewError(ergo.KindTransport, "both Node and Explorer upstreams are unreachable"))
	}
	return s.finalize(r.Success(status))
}

// GetIndexedHeight reports the Node extra-index progress.
func (s *Service) GetIndexedHeight(ctx context.Context) *response.Response {
	r := response.New()
	indexed, full, err := s.client.IndexedHeight(ctx)
	if err != nil {
		return s.fail(r, err)
	}
	return s.finalize(r.Success(map[string]int{"indexedHeight": indexed, "fullHeight": full}))
}

// SubmitTransaction passes a signed transaction through to the Node. This is
// the single permitted state-changing operation; the payload is not
// inspected beyond being valid JSON.
func (s *Service) SubmitTransaction(ctx context.Context, tx json.RawMessage) *response.Response {
	r := response.New()
	if len(tx) == 0 || !json.Valid(tx) {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "transaction body must be valid JSON"))
	}
	txID, err := s.client.SubmitTransaction(ctx, tx)
	if err != nil {
		return s.fail(r, err)
	}
	return s.finalize(r.Success(map[string]string{"id": txID}))
}
