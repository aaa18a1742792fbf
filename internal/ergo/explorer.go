package ergo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ergoscope/analytics-engine/pkg/models"
)

// Explorer wire shapes. Decoders are tolerant: unknown fields are ignored,
// missing optional fields default. Engines only ever see pkg/models values.

type explorerBalance struct {
	NanoErgs int64                `json:"nanoErgs"`
	Tokens   []models.TokenAmount `json:"tokens"`
}

type pagedEnvelope[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type explorerMiner struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

type explorerBlock struct {
	ID                string        `json:"id"`
	Height            int           `json:"height"`
	Timestamp         int64         `json:"timestamp"`
	TransactionsCount int           `json:"transactionsCount"`
	Miner             explorerMiner `json:"miner"`
	Size              int           `json:"size"`
	Difficulty        int64         `json:"difficulty"`
	MinerReward       int64         `json:"minerReward"`
}

func (b explorerBlock) toModel() models.Block {
	return models.Block{
		ID:                b.ID,
		Height:            b.Height,
		Timestamp:         b.Timestamp,
		TransactionsCount: b.TransactionsCount,
		MinerAddress:      b.Miner.Address,
		MinerReward:       b.MinerReward,
		Difficulty:        b.Difficulty,
		Size:              b.Size,
	}
}

// NetworkState is the Explorer `networkState` payload.
type NetworkState struct {
	LastBlockID string `json:"lastBlockId"`
	Height      int    `json:"height"`
	Params      struct {
		BlockVersion int `json:"blockVersion"`
	} `json:"params"`
}

// ExplorerInfo is the Explorer `info` payload.
type ExplorerInfo struct {
	Version            string  `json:"version"`
	Supply             int64   `json:"supply"`
	TransactionAverage float64 `json:"transactionAverage"`
	HashRate           float64 `json:"hashRate"`
}

// ConfirmedBalance fetches the confirmed balance of an address.
func (c *Client) ConfirmedBalance(ctx context.Context, address string) (*models.BalanceSnapshot, error) {
	var out explorerBalance
	if err := c.GetExplorer(ctx, fmt.Sprintf("addresses/%s/balance/confirmed", address), nil, &out); err != nil {
		return nil, err
	}
	tokens := out.Tokens
	if tokens == nil {
		tokens = []models.TokenAmount{}
	}
	return &models.BalanceSnapshot{NanoErgs: out.NanoErgs, Tokens: tokens}, nil
}

// AddressTransactions fetches one page of an address's transaction history.
// The second return value is the upstream total.
func (c *Client) AddressTransactions(ctx context.Context, address string, offset, limit int) ([]models.Transaction, int, error) {
	var out pagedEnvelope[models.Transaction]
	q := pageQuery(offset, limit)
	if err := c.GetExplorer(ctx, fmt.Sprintf("addresses/%s/transactions", address), q, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

// TransactionByID fetches a single transaction.
func (c *Client) TransactionByID(ctx context.Context, txID string) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.GetExplorer(ctx, fmt.Sprintf("transactions/%s", txID), nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, NewError(KindUpstreamSemantic, "transaction payload missing id for %s", txID)
	}
	return &out, nil
}

// BlockByID fetches one block summary.
func (c *Client) BlockByID(ctx context.Context, blockID string) (*models.Block, error) {
	// The explorer wraps the block under a `block` key on the detail route.
	var out struct {
		Block struct {
			Header explorerBlock `json:"header"`
		} `json:"block"`
	}
	if err := c.GetExplorer(ctx, fmt.Sprintf("blocks/%s", blockID), nil, &out); err != nil {
		return nil, err
	}
	if out.Block.Header.ID == "" {
		return nil, NewError(KindNotFound, "block not found: %s", blockID)
	}
	block := out.Block.Header.toModel()
	return &block, nil
}

// BlocksAtHeight returns the block summaries at an exact height. Forks mean
// there can be more than one.
func (c *Client) BlocksAtHeight(ctx context.Context, height int) ([]models.Block, error) {
	var out pagedEnvelope[explorerBlock]
	if err := c.GetExplorer(ctx, fmt.Sprintf("blocks/at/%d", height), nil, &out); err != nil {
		return nil, err
	}
	blocks := make([]models.Block, 0, len(out.Items))
	for _, b := range out.Items {
		blocks = append(blocks, b.toModel())
	}
	return blocks, nil
}

// LatestBlocks returns the most recent blocks, newest first.
func (c *Client) LatestBlocks(ctx context.Context, limit int) ([]models.Block, error) {
	q := pageQuery(0, limit)
	q.Set("sortBy", "height")
	q.Set("sortDirection", "desc")
	var out pagedEnvelope[explorerBlock]
	if err := c.GetExplorer(ctx, "blocks", q, &out); err != nil {
		return nil, err
	}
	blocks := make([]models.Block, 0, len(out.Items))
	for _, b := range out.Items {
		blocks = append(blocks, b.toModel())
	}
	return blocks, nil
}

// BlockTransactions fetches one page of a block's transactions.
func (c *Client) BlockTransactions(ctx context.Context, blockID string, offset, limit int) ([]models.Transaction, int, error) {
	var out pagedEnvelope[models.Transaction]
	if err := c.GetExplorer(ctx, fmt.Sprintf("blocks/%s/transactions", blockID), pageQuery(offset, limit), &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

// GetNetworkState fetches the Explorer chain tip view.
func (c *Client) GetNetworkState(ctx context.Context) (*NetworkState, error) {
	var out NetworkState
	if err := c.GetExplorer(ctx, "networkState", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetExplorerInfo fetches supply and hashrate figures.
func (c *Client) GetExplorerInfo(ctx context.Context) (*ExplorerInfo, error) {
	var out ExplorerInfo
	if err := c.GetExplorer(ctx, "info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExplorerBox fetches a box from the Explorer.
func (c *Client) ExplorerBox(ctx context.Context, boxID string) (*models.Box, error) {
	var out models.Box
	if err := c.GetExplorer(ctx, fmt.Sprintf("boxes/%s", boxID), nil, &out); err != nil {
		return nil, err
	}
	if out.BoxID == "" {
		return nil, NewError(KindNotFound, "box not found: %s", boxID)
	}
	return &out, nil
}

// ExplorerToken fetches token metadata from the Explorer.
func (c *Client) ExplorerToken(ctx context.Context, tokenID string) (*models.Token, error) {
	var out models.Token
	if err := c.GetExplorer(ctx, fmt.Sprintf("tokens/%s", tokenID), nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, NewError(KindNotFound, "token not found: %s", tokenID)
	}
	return &out, nil
}

// SearchTokens queries the Explorer token search endpoint.
func (c *Client) SearchTokens(ctx context.Context, query string) ([]models.Token, error) {
	q := url.Values{}
	q.Set("query", query)
	var out pagedEnvelope[models.Token]
	if err := c.GetExplorer(ctx, "tokens/search", q, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func pageQuery(offset, limit int) url.Values {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	return q
}
