package models

// Token is the on-chain metadata of an Ergo token.
type Token struct {
	ID             string `json:"id"`
	BoxID          string `json:"boxId,omitempty"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Decimals       int    `json:"decimals"`
	EmissionAmount int64  `json:"emissionAmount"`
	Type           string `json:"type,omitempty"`
	MintingHeight  int    `json:"mintingHeight,omitempty"`
	MintingTxID    string `json:"mintingTxId,omitempty"`
}

// TokenAmount is a token position inside a balance.
type TokenAmount struct {
	TokenID  string `json:"tokenId"`
	Amount   int64  `json:"amount"`
	Decimals int    `json:"decimals"`
	Name     string `json:"name,omitempty"`
}

// Formatted returns amount / 10^decimals; missing decimals means 0.
func (t TokenAmount) Formatted() float64 {
	v := float64(t.Amount)
	for i := 0; i < t.Decimals; i++ {
		v /= 10
	}
	return v
}

// BalanceSnapshot is one side (confirmed or unconfirmed) of an address balance.
type BalanceSnapshot struct {
	NanoErgs int64         `json:"nanoErgs"`
	Tokens   []TokenAmount `json:"tokens"`
}

// AddressBalance is the confirmed and unconfirmed position of an address.
type AddressBalance struct {
	Address     string          `json:"address"`
	Confirmed   BalanceSnapshot `json:"confirmed"`
	Unconfirmed BalanceSnapshot `json:"unconfirmed"`
}

// Holder is one entry of a token distribution, amount in raw token units.
type Holder struct {
	Address    string  `json:"address"`
	Amount     int64   `json:"amount"`
	Percentage float64 `json:"percentage"` // of total supply, 6 decimals
}

// CollectionInfo describes an NFT collection root token.
type CollectionInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TokenCount  int    `json:"tokenCount"`
}

// DistributionReport is the holder distribution of a token or collection.
type DistributionReport struct {
	TokenID       string          `json:"tokenId"`
	TokenName     string          `json:"tokenName"`
	Decimals      int             `json:"decimals"`
	TotalSupply   int64           `json:"totalSupply"` // sum over the walked box set
	TotalHolders  int             `json:"totalHolders"`
	Holders       []Holder        `json:"holders"` // sorted desc by amount
	Gini          float64         `json:"giniCoefficient"`
	Top10Percent  float64         `json:"top10PercentConcentration"` // ratio in [0,1]
	Collection    *CollectionInfo `json:"collection,omitempty"`
	Partial       bool            `json:"partial,omitempty"` // a mid-walk page errored
}
