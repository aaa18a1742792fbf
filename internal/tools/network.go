package tools

import (
	"context"

	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/internal/response"
	"github.com/ergoscope/analytics-engine/pkg/models"
)

// Mempool fee histogram buckets, in nanoErgs.
var feeBuckets = []struct {
	label string
	upTo  int64
}{
	{"<=0.001 ERG", 1_000_000},
	{"<=0.01 ERG", 10_000_000},
	{"<=0.1 ERG", 100_000_000},
	{">0.1 ERG", 1 << 62},
}

// GetMempoolStatistics walks the Node's unconfirmed transaction set and
// summarises it. Fees are derived exactly (input value minus output value)
// for entries whose inputs carry resolved values; unresolvable entries
// contribute zero and are excluded from the average.
func (s *Service) GetMempoolStatistics(ctx context.Context) *response.Response {
	r := response.New()

	txs, reason, err := ergo.Walk(ctx, func(ctx context.Context, offset, limit int) ([]models.Transaction, error) {
		return s.client.UnconfirmedTransactions(ctx, offset, limit)
	}, ergo.WalkOptions{PageSize: 100})
	if reason == ergo.TermUpstreamError && len(txs) == 0 {
		return s.fail(r, err)
	}

	stats := models.MempoolStatistics{
		TransactionCount: len(txs),
		FeeHistogram:     map[string]int{},
	}
	feePayers := 0
	senders := map[string]bool{}
	recipients := map[string]bool{}
	for _, tx := range txs {
		stats.TotalBytes += tx.Size
		for _, addr := range tx.InputAddresses() {
			senders[addr] = true
		}
		for _, addr := range tx.OutputAddresses() {
			recipients[addr] = true
		}
		fee := tx.Fee()
		if fee <= 0 {
			continue
		}
		feePayers++
		stats.TotalFees += fee
		for _, bucket := range feeBuckets {
			if fee <= bucket.upTo {
				stats.FeeHistogram[bucket.label]++
				break
			}
		}
	}
	if feePayers > 0 {
		stats.AverageFee = float64(stats.TotalFees) / float64(feePayers)
	}
	stats.UniqueSenders = len(senders)
	stats.UniqueRecipients = len(recipients)

	r.Success(stats)
	if reason == ergo.TermUpstreamError {
		r.Truncated(-1)
		r.WithMessage("mempool walk terminated early; statistics cover the collected subset")
	}
	return s.finalize(r)
}

// GetNodeWallet lists the node wallet's addresses with their balances.
// Requires an API key with wallet access on the Node upstream.
func (s *Service) GetNodeWallet(ctx context.Context) *response.Response {
	r := response.New()

	addresses, err := s.client.WalletAddresses(ctx)
	if err != nil {
		return s.fail(r, err)
	}

	wallet := make([]models.WalletAddress, 0, len(addresses))
	for _, addr := range addresses {
		entry := models.WalletAddress{Address: addr, Tokens: []models.TokenAmount{}}
		if balance, err := s.client.NodeBalance(ctx, addr); err == nil {
			entry.Confirmed = balance.Confirmed.NanoErgs
			entry.Unconfirmed = balance.Unconfirmed.NanoErgs
			entry.Tokens = balance.Confirmed.Tokens
		}
		wallet = append(wallet, entry)
	}
	return s.finalize(r.Success(wallet))
}
