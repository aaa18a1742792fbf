package models

import "encoding/json"

// Asset is a token entry carried by a box.
type Asset struct {
	TokenID  string `json:"tokenId"`
	Amount   int64  `json:"amount"`
	Decimals int    `json:"decimals"`
	Name     string `json:"name,omitempty"`
}

// UnmarshalJSON tolerates malformed amount values. Upstream indexers have
// been seen emitting fractional amounts; such positions count as zero
// instead of failing the whole page.
func (a *Asset) UnmarshalJSON(data []byte) error {
	var raw struct {
		TokenID  string      `json:"tokenId"`
		Amount   json.Number `json:"amount"`
		Decimals int         `json:"decimals"`
		Name     string      `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.TokenID = raw.TokenID
	a.Decimals = raw.Decimals
	a.Name = raw.Name
	a.Amount = 0
	if n, err := raw.Amount.Int64(); err == nil {
		a.Amount = n
	}
	return nil
}

// Formatted returns the human-readable amount, amount / 10^decimals.
// A missing decimals field is treated as 0.
func (a Asset) Formatted() float64 {
	v := float64(a.Amount)
	for i := 0; i < a.Decimals; i++ {
		v /= 10
	}
	return v
}

// Box is an output in the Ergo UTXO ledger. Immutable snapshot of what the
// upstream returned; spent boxes carry the spending transaction id.
type Box struct {
	BoxID           string  `json:"boxId"`
	Address         string  `json:"address"`
	Value           int64   `json:"value"` // in nanoErgs
	CreationHeight  int     `json:"creationHeight"`
	InclusionHeight int     `json:"inclusionHeight,omitempty"`
	Assets          []Asset `json:"assets"`
	ErgoTree        string  `json:"ergoTree,omitempty"`
	SpentTxID       string  `json:"spentTransactionId,omitempty"`
	TransactionID   string  `json:"transactionId,omitempty"`
	Index           int     `json:"index"`
}

// AssetAmount returns the amount of the given token held by the box,
// or 0 when the box does not carry it.
func (b Box) AssetAmount(tokenID string) int64 {
	for _, a := range b.Assets {
		if a.TokenID == tokenID {
			return a.Amount
		}
	}
	return 0
}
