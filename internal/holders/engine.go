package holders

import (
	"context"
	"log"

	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/pkg/models"
)

// Engine aggregates per-address token positions by walking the Node's
// unspent-box index. Everything is request-scoped; nothing is cached
// between invocations.
type Engine struct {
	client *ergo.Client

	// MaxBoxes caps how many unspent boxes a single walk will consume.
	// Zero means unbounded.
	MaxBoxes int
	PageSize int
}

func NewEngine(client *ergo.Client) *Engine {
	return &Engine{client: client, PageSize: 100}
}

// TokenDistribution builds the holder distribution for one token.
//
// A missing token surfaces as NotFound. A page error mid-walk does not
// discard work: the report built from the boxes collected so far is
// returned with Partial set, alongside the error.
func (e *Engine) TokenDistribution(ctx context.Context, tokenID string) (*models.DistributionReport, error) {
	token, err := e.client.NodeTokenByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	boxes, reason, walkErr := ergo.Walk(ctx, func(ctx context.Context, offset, limit int) ([]models.Box, error) {
		page, _, err := e.client.UnspentBoxesByTokenID(ctx, tokenID, offset, limit)
		return page, err
	}, ergo.WalkOptions{PageSize: e.PageSize, MaxItems: e.MaxBoxes})

	holderMap := Accumulate(boxes, tokenID)
	report := BuildReport(token, holderMap)

	if reason == ergo.TermUpstreamError {
		log.Printf("[Holders] Partial walk for %s: %d boxes collected before error", tokenID, len(boxes))
		report.Partial = true
		return report, &ergo.APIError{
			Kind:    ergo.KindPartialResult,
			Message: "holder walk terminated early; returning partial distribution",
			Err:     walkErr,
		}
	}
	return report, nil
}

// Accumulate folds a box set into an address -> amount map for one token.
// Boxes without an address are skipped; boxes not carrying the token
// contribute zero.
func Accumulate(boxes []models.Box, tokenID string) map[string]int64 {
	holderMap := make(map[string]int64)
	for _, box := range boxes {
		if box.Address == "" {
			continue
		}
		if amount := box.AssetAmount(tokenID); amount > 0 {
			holderMap[box.Address] += amount
		}
	}
	return holderMap
}
