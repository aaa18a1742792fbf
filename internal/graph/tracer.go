package graph

import (
	"context"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/pkg/models"
)

// Address Graph Tracer
//
// Given a seed address, explores the address/transaction bipartite graph
// breadth-first within a bounded radius:
//
//  1. Start at the seed (distance 0)
//  2. Pull up to TxLimit transactions touching the current address
//  3. Every counterparty on those transactions becomes a neighbour
//  4. Recurse on each neighbour at the next distance
//  5. Stop at the depth bound
//
// Per-address fetch failures are localised: the walk keeps whatever graph it
// has built and moves on. Only a totally empty graph bubbles an error up.

const (
	MinDepth   = 1
	MaxDepth   = 4
	MinTxLimit = 1
	MaxTxLimit = 20

	// A non-seed address observed on more than hubTxThreshold transactions
	// within the trace is reported as a hub.
	hubTxThreshold = 3
	hubReportLimit = 3

	// Balance enrichment is display-oriented; cap it per distance group.
	balanceDisplayLimit = 5
)

// Tracer runs bounded BFS traversals against the Explorer API.
type Tracer struct {
	client *ergo.Client
}

func NewTracer(client *ergo.Client) *Tracer {
	return &Tracer{client: client}
}

type queueEntry struct {
	address  string
	distance int
}

// Trace explores outward from seed. depth must be within [1,4] and txLimit
// within [1,20]; out-of-range values are rejected before any upstream call.
func (t *Tracer) Trace(ctx context.Context, seed string, depth, txLimit int) (*models.AddressGraphReport, error) {
	if seed == "" {
		return nil, ergo.NewError(ergo.KindInputValidation, "address must not be empty")
	}
	if depth < MinDepth || depth > MaxDepth {
		return nil, ergo.NewError(ergo.KindInputValidation, "depth must be between %d and %d", MinDepth, MaxDepth)
	}
	if txLimit < MinTxLimit || txLimit > MaxTxLimit {
		return nil, ergo.NewError(ergo.KindInputValidation, "tx_limit must be between %d and %d", MinTxLimit, MaxTxLimit)
	}

	report := &models.AddressGraphReport{
		TraceID:    uuid.NewString(),
		Seed:       seed,
		Depth:      depth,
		TxLimit:    txLimit,
		Nodes:      map[string]*models.GraphNode{seed: {Address: seed, Distance: 0, TxIDs: []string{}}},
		ByDistance: make(map[int][]string),
	}

	visited := map[string]bool{seed: true}
	queue := []queueEntry{{seed, 1}}
	var firstErr error
	fetched := 0

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]
		if entry.distance > depth {
			continue
		}

		txs, _, err := t.client.AddressTransactions(ctx, entry.address, 0, txLimit)
		if err != nil {
			apiErr := ergo.AsAPIError(err)
			if apiErr.Kind == ergo.KindCancelled {
				return nil, apiErr
			}
			if firstErr == nil {
				firstErr = apiErr
			}
			log.Printf("[Tracer] Skipping %s at distance %d: %v", entry.address, entry.distance, err)
			continue
		}
		fetched++

		node := report.Nodes[entry.address]
		for _, tx := range txs {
			if containsID(node.TxIDs, tx.ID) {
				continue
			}
			node.TxIDs = append(node.TxIDs, tx.ID)

			for _, neighbour := range tx.CounterpartyAddresses(entry.address) {
				if visited[neighbour] {
					continue
				}
				visited[neighbour] = true
				report.Nodes[neighbour] = &models.GraphNode{
					Address:  neighbour,
					Distance: entry.distance,
					TxIDs:    []string{},
				}
				queue = append(queue, queueEntry{neighbour, entry.distance + 1})
			}
		}
	}

	// A total upstream outage: nothing was fetched and the graph is just
	// the bare seed.
	if fetched == 0 && firstErr != nil {
		return nil, firstErr
	}

	t.finalize(ctx, report)
	return report, nil
}

func (t *Tracer) finalize(ctx context.Context, report *models.AddressGraphReport) {
	byDistance := make(map[int][]string)
	var hubs []models.HubAddress

	for addr, node := range report.Nodes {
		report.TotalTxCount += len(node.TxIDs)
		if node.Distance > 0 {
			byDistance[node.Distance] = append(byDistance[node.Distance], addr)
			if len(node.TxIDs) > hubTxThreshold {
				hubs = append(hubs, models.HubAddress{Address: addr, TxCount: len(node.TxIDs), Distance: node.Distance})
			}
		}
	}

	for d := range byDistance {
		sort.Strings(byDistance[d])
	}
	report.ByDistance = byDistance

	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].TxCount != hubs[j].TxCount {
			return hubs[i].TxCount > hubs[j].TxCount
		}
		return hubs[i].Address < hubs[j].Address
	})
	if len(hubs) > hubReportLimit {
		hubs = hubs[:hubReportLimit]
	}
	report.Hubs = hubs

	// Best-effort balance enrichment: addresses that error stay in the
	// group, just without a balance attached.
	for d := 1; d <= report.Depth; d++ {
		group := byDistance[d]
		for i, addr := range group {
			if i >= balanceDisplayLimit {
				break
			}
			balance, err := t.client.NodeBalance(ctx, addr)
			if err != nil {
				continue
			}
			report.Nodes[addr].Balance = balance
		}
	}
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
