package models

// Block is a block header plus the summary fields the analytics surface uses.
type Block struct {
	ID                string `json:"id"`
	Height            int    `json:"height"`
	Timestamp         int64  `json:"timestamp"` // unix milliseconds
	TransactionsCount int    `json:"transactionsCount"`
	MinerAddress      string `json:"minerAddress,omitempty"`
	MinerReward       int64  `json:"minerReward,omitempty"`
	Difficulty        int64  `json:"difficulty,omitempty"`
	Size              int    `json:"size,omitempty"`
}

// NetworkStatus composes Node info and Explorer network-state into one view.
type NetworkStatus struct {
	Height        int     `json:"height"`
	IndexedHeight int     `json:"indexedHeight,omitempty"`
	Difficulty    int64   `json:"difficulty"`
	Hashrate      float64 `json:"hashrate"` // H/s derived from difficulty over the 2-minute block target
	Supply        int64   `json:"supply,omitempty"` // circulating, in nanoErgs
	NodeVersion   string  `json:"nodeVersion,omitempty"`
	PeersCount    int     `json:"peersCount,omitempty"`
	IsMining      bool    `json:"isMining,omitempty"`
}

// MempoolStatistics summarises the unconfirmed transaction set.
type MempoolStatistics struct {
	TransactionCount int            `json:"transactionCount"`
	TotalBytes       int            `json:"totalBytes"`
	AverageFee       float64        `json:"averageFee"` // nanoErgs, 0 when no fee is resolvable
	TotalFees        int64          `json:"totalFees"`
	UniqueSenders    int            `json:"uniqueSenders"`
	UniqueRecipients int            `json:"uniqueRecipients"`
	FeeHistogram     map[string]int `json:"feeHistogram,omitempty"` // bucket label -> tx count
}

// WalletAddress is one node-wallet address with its balance.
type WalletAddress struct {
	Address     string        `json:"address"`
	Confirmed   int64         `json:"confirmed"`   // nanoErgs
	Unconfirmed int64         `json:"unconfirmed"` // nanoErgs
	Tokens      []TokenAmount `json:"tokens"`
}

// AddressBookEntry is one known-address record from the address book feed.
type AddressBookEntry struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	URL     string `json:"url,omitempty"`
}

// AddressBook is the address book feed, also the shape of the disk fallback.
type AddressBook struct {
	Items  []AddressBookEntry `json:"items"`
	Total  int                `json:"total"`
	Tokens []Token            `json:"tokens"`
	Note   string             `json:"note,omitempty"`
}
