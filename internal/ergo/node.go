package ergo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ergoscope/analytics-engine/pkg/models"
)

// flexiblePage tolerates both shapes the Node API is known to return for
// paged routes: a bare JSON array, or an `{items: [...], total: n}` envelope.
type flexiblePage[T any] struct {
	Items []T
	Total int
}

func (p *flexiblePage[T]) UnmarshalJSON(data []byte) error {
	var bare []T
	if err := json.Unmarshal(data, &bare); err == nil {
		p.Items = bare
		p.Total = len(bare)
		return nil
	}
	var wrapped struct {
		Items []T `json:"items"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	p.Items = wrapped.Items
	p.Total = wrapped.Total
	return nil
}

// NodeInfo is the Node `info` payload.
type NodeInfo struct {
	Name              string  `json:"name"`
	AppVersion        string  `json:"appVersion"`
	FullHeight        int     `json:"fullHeight"`
	HeadersHeight     int     `json:"headersHeight"`
	Difficulty        int64   `json:"difficulty"`
	PeersCount        int     `json:"peersCount"`
	UnconfirmedCount  int     `json:"unconfirmedCount"`
	IsMining          bool    `json:"isMining"`
	Network           string  `json:"network"`
	EligibleForMining bool    `json:"eligibleForMining"`
}

// GetNodeInfo fetches the Node `info` route.
func (c *Client) GetNodeInfo(ctx context.Context) (*NodeInfo, error) {
	var out NodeInfo
	if err := c.GetNode(ctx, "info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IndexedHeight reports how far the Node's extra index has caught up.
func (c *Client) IndexedHeight(ctx context.Context) (indexed, full int, err error) {
	var out struct {
		IndexedHeight int `json:"indexedHeight"`
		FullHeight    int `json:"fullHeight"`
	}
	if err := c.GetNode(ctx, "blockchain/indexedHeight", nil, &out); err != nil {
		return 0, 0, err
	}
	return out.IndexedHeight, out.FullHeight, nil
}

// NodeTransactionByID fetches a transaction from the Node index.
func (c *Client) NodeTransactionByID(ctx context.Context, txID string) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.GetNode(ctx, fmt.Sprintf("blockchain/transaction/byId/%s", txID), nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, NewError(KindNotFound, "transaction not found: %s", txID)
	}
	return &out, nil
}

// NodeTransactionByIndex fetches a transaction by its global index number.
func (c *Client) NodeTransactionByIndex(ctx context.Context, index int64) (*models.Transaction, error) {
	var out models.Transaction
	if err := c.GetNode(ctx, fmt.Sprintf("blockchain/transaction/byIndex/%d", index), nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, NewError(KindNotFound, "transaction not found at index %d", index)
	}
	return &out, nil
}

// NodeTransactionsByAddress fetches one page of transactions touching an
// address. The Node takes the address as a raw POST body.
func (c *Client) NodeTransactionsByAddress(ctx context.Context, address string, offset, limit int) ([]models.Transaction, int, error) {
	var out flexiblePage[models.Transaction]
	if err := c.PostNode(ctx, "blockchain/transaction/byAddress", pageQuery(offset, limit), address, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

// NodeTransactionRange lists transaction ids in a global-index window.
func (c *Client) NodeTransactionRange(ctx context.Context, offset, limit int) ([]string, error) {
	var out flexiblePage[string]
	if err := c.GetNode(ctx, "blockchain/transaction/range", pageQuery(offset, limit), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// NodeBoxByID fetches a box from the Node index.
func (c *Client) NodeBoxByID(ctx context.Context, boxID string) (*models.Box, error) {
	var out models.Box
	if err := c.GetNode(ctx, fmt.Sprintf("blockchain/box/byId/%s", boxID), nil, &out); err != nil {
		return nil, err
	}
	if out.BoxID == "" {
		return nil, NewError(KindNotFound, "box not found: %s", boxID)
	}
	return &out, nil
}

// NodeBoxByIndex fetches a box by its global index number.
func (c *Client) NodeBoxByIndex(ctx context.Context, index int64) (*models.Box, error) {
	var out models.Box
	if err := c.GetNode(ctx, fmt.Sprintf("blockchain/box/byIndex/%d", index), nil, &out); err != nil {
		return nil, err
	}
	if out.BoxID == "" {
		return nil, NewError(KindNotFound, "box not found at index %d", index)
	}
	return &out, nil
}

// BoxesByTokenID fetches one page of boxes (spent or not) carrying a token.
func (c *Client) BoxesByTokenID(ctx context.Context, tokenID string, offset, limit int) ([]models.Box, int, error) {
	var out flexiblePage[models.Box]
	if err := c.GetNode(ctx, fmt.Sprintf("blockchain/box/byTokenId/%s", tokenID), pageQuery(offset, limit), &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

// UnspentBoxesByTokenID fetches one page of unspent boxes carrying a token.
func (c *Client) UnspentBoxesByTokenID(ctx context.Context, tokenID string, offset, limit int) ([]models.Box, int, error) {
	var out flexiblePage[models.Box]
	if err := c.GetNode(ctx, fmt.Sprintf("blockchain/box/unspent/byTokenId/%s", tokenID), pageQuery(offset, limit), &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

// BoxesByAddress fetches one page of boxes ever guarded by an address.
func (c *Client) BoxesByAddress(ctx context.Context, address string, offset, limit int) ([]models.Box, int, error) {
	var out flexiblePage[models.Box]
	if err := c.PostNode(ctx, "blockchain/box/byAddress", pageQuery(offset, limit), address, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

// UnspentBoxesByAddress fetches one page of an address's unspent boxes.
func (c *Client) UnspentBoxesByAddress(ctx context.Context, address string, offset, limit int) ([]models.Box, int, error) {
	var out flexiblePage[models.Box]
	if err := c.PostNode(ctx, "blockchain/box/unspent/byAddress", pageQuery(offset, limit), address, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

// BoxesByErgoTree fetches one page of boxes guarded by a script.
func (c *Client) BoxesByErgoTree(ctx context.Context, ergoTree string, offset, limit int) ([]models.Box, int, error) {
	var out flexiblePage[models.Box]
	if err := c.PostNode(ctx, "blockchain/box/byErgoTree", pageQuery(offset, limit), ergoTree, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

// UnspentBoxesByErgoTree fetches one page of unspent boxes guarded by a script.
func (c *Client) UnspentBoxesByErgoTree(ctx context.Context, ergoTree string, offset, limit int) ([]models.Box, int, error) {
	var out flexiblePage[models.Box]
	if err := c.PostNode(ctx, "blockchain/box/unspent/byErgoTree", pageQuery(offset, limit), ergoTree, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

// NodeBoxRange lists box ids in a global-index window.
func (c *Client) NodeBoxRange(ctx context.Context, offset, limit int) ([]string, error) {
	var out flexiblePage[string]
	if err := c.GetNode(ctx, "blockchain/box/range", pageQuery(offset, limit), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// NodeTokenByID fetches token metadata from the Node index.
func (c *Client) NodeTokenByID(ctx context.Context, tokenID string) (*models.Token, error) {
	var out models.Token
	if err := c.GetNode(ctx, fmt.Sprintf("blockchain/token/byId/%s", tokenID), nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, NewError(KindNotFound, "token not found: %s", tokenID)
	}
	return &out, nil
}

// NodeTokens resolves a batch of token ids to metadata.
func (c *Client) NodeTokens(ctx context.Context, tokenIDs []string) ([]models.Token, error) {
	var out flexiblePage[models.Token]
	if err := c.PostNode(ctx, "blockchain/tokens", nil, tokenIDs, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// NodeBalance fetches the confirmed and unconfirmed balance of an address.
func (c *Client) NodeBalance(ctx context.Context, address string) (*models.AddressBalance, error) {
	var out struct {
		Confirmed   models.BalanceSnapshot `json:"confirmed"`
		Unconfirmed models.BalanceSnapshot `json:"unconfirmed"`
	}
	if err := c.PostNode(ctx, "blockchain/balance", nil, address, &out); err != nil {
		return nil, err
	}
	if out.Confirmed.Tokens == nil {
		out.Confirmed.Tokens = []models.TokenAmount{}
	}
	if out.Unconfirmed.Tokens == nil {
		out.Unconfirmed.Tokens = []models.TokenAmount{}
	}
	return &models.AddressBalance{Address: address, Confirmed: out.Confirmed, Unconfirmed: out.Unconfirmed}, nil
}

// WalletAddresses lists the addresses of the node's own wallet.
func (c *Client) WalletAddresses(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.GetNode(ctx, "wallet/addresses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnconfirmedTransactions fetches one page of the Node mempool.
func (c *Client) UnconfirmedTransactions(ctx context.Context, offset, limit int) ([]models.Transaction, error) {
	var out flexiblePage[models.Transaction]
	if err := c.GetNode(ctx, "transactions/unconfirmed", pageQuery(offset, limit), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// SubmitTransaction posts a signed transaction to the Node. The tx payload is
// passed through untouched; on success the Node echoes the transaction id.
func (c *Client) SubmitTransaction(ctx context.Context, tx json.RawMessage) (string, error) {
	var txID string
	if err := c.PostNode(ctx, "transactions", nil, tx, &txID); err != nil {
		return "", err
	}
	return txID, nil
}
