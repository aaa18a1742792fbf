package holders

import (
	"context"
	"log"
	"sort"

	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/pkg/models"
)

// Collection membership follows the EIP-24 issuance convention: a member NFT
// is minted in a box that also carries the collection token. Walking the
// boxes that ever held the collection token therefore surfaces every member
// id as a sibling asset.

// ResolveCollection returns the member NFT token ids of a collection root
// token, in first-seen order.
func (e *Engine) ResolveCollection(ctx context.Context, collectionID string) ([]string, error) {
	boxes, reason, err := ergo.Walk(ctx, func(ctx context.Context, offset, limit int) ([]models.Box, error) {
		page, _, err := e.client.BoxesByTokenID(ctx, collectionID, offset, limit)
		return page, err
	}, ergo.WalkOptions{PageSize: e.PageSize, MaxItems: e.MaxBoxes})
	if reason == ergo.TermUpstreamError && len(boxes) == 0 {
		return nil, err
	}

	seen := map[string]bool{collectionID: true}
	var members []string
	for _, box := range boxes {
		for _, asset := range box.Assets {
			if !seen[asset.TokenID] {
				seen[asset.TokenID] = true
				members = append(members, asset.TokenID)
			}
		}
	}
	return members, nil
}

// CollectionDistribution aggregates holders across every member NFT of a
// collection and attaches the collection descriptor to the report.
func (e *Engine) CollectionDistribution(ctx context.Context, collectionID string) (*models.DistributionReport, error) {
	root, err := e.client.NodeTokenByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	members, err := e.ResolveCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ergo.NewError(ergo.KindNotFound, "no member tokens found for collection %s", collectionID)
	}

	merged := make(map[string]int64)
	partial := false
	for _, memberID := range members {
		boxes, reason, walkErr := ergo.Walk(ctx, func(ctx context.Context, offset, limit int) ([]models.Box, error) {
			page, _, err := e.client.UnspentBoxesByTokenID(ctx, memberID, offset, limit)
			return page, err
		}, ergo.WalkOptions{PageSize: e.PageSize, MaxItems: e.MaxBoxes})
		if reason == ergo.TermUpstreamError {
			log.Printf("[Holders] Collection %s: member %s walk errored, keeping partial data: %v", collectionID, memberID, walkErr)
			partial = true
		}
		for addr, amount := range Accumulate(boxes, memberID) {
			merged[addr] += amount
		}
	}

	report := BuildReport(root, merged)
	report.Partial = partial
	report.Collection = &models.CollectionInfo{
		ID:          root.ID,
		Name:        root.Name,
		Description: root.Description,
		TokenCount:  len(members),
	}

	if partial {
		return report, &ergo.APIError{
			Kind:    ergo.KindPartialResult,
			Message: "collection walk terminated early for at least one member; returning partial distribution",
		}
	}
	return report, nil
}

// SearchCollections looks up collection root tokens by name through the
// Explorer token search. Collection roots are fungible-looking tokens whose
// emission is one unit per member, so the search result is filtered to
// zero-decimal tokens and ranked by name.
func (e *Engine) SearchCollections(ctx context.Context, query string, limit int) ([]models.CollectionInfo, error) {
	tokens, err := e.client.SearchTokens(ctx, query)
	if err != nil {
		return nil, err
	}

	var results []models.CollectionInfo
	for _, tok := range tokens {
		if tok.Decimals != 0 {
			continue
		}
		results = append(results, models.CollectionInfo{
			ID:          tok.ID,
			Name:        tok.Name,
			Description: tok.Description,
			TokenCount:  int(tok.EmissionAmount),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
