package models

// GraphNode is a single address discovered during a bounded traversal.
type GraphNode struct {
	Address  string          `json:"address"`
	Distance int             `json:"distance"` // hops from the seed, 0 for the seed itself
	TxIDs    []string        `json:"txIds"`    // transactions observed touching this address
	Balance  *AddressBalance `json:"balance,omitempty"` // best-effort enrichment
}

// HubAddress is a non-seed node with an unusually high observed tx count.
type HubAddress struct {
	Address  string `json:"address"`
	TxCount  int    `json:"txCount"`
	Distance int    `json:"distance"`
}

// AddressGraphReport is the result of a depth-bounded BFS from a seed address
// across the address/transaction bipartite graph.
type AddressGraphReport struct {
	TraceID      string                `json:"traceId"`
	Seed         string                `json:"seed"`
	Depth        int                   `json:"depth"`
	TxLimit      int                   `json:"txLimit"` // per-address cap of transactions considered
	Nodes        map[string]*GraphNode `json:"nodes"`
	ByDistance   map[int][]string      `json:"byDistance"` // distance -> addresses, 1..depth
	Hubs         []HubAddress          `json:"hubs"`       // top 3 by tx count, |txs| > 3
	TotalTxCount int                   `json:"totalTxCount"`
}
