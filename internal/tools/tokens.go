package tools

import (
	"context"

	"github.com/ergoscope/analytics-engine/internal/ergo"
	"github.com/ergoscope/analytics-engine/internal/response"
	"github.com/ergoscope/analytics-engine/pkg/models"
)

const minSearchQueryLen = 3

// GetToken fetches token metadata, preferring the Node index and falling
// back to the Explorer.
func (s *Service) GetToken(ctx context.Context, tokenID string) *response.Response {
	r := response.New()
	if tokenID == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "token id must not be empty"))
	}

	token, err := s.client.NodeTokenByID(ctx, tokenID)
	if err != nil {
		token, err = s.client.ExplorerToken(ctx, tokenID)
		if err != nil {
			return s.fail(r, err)
		}
	}
	return s.finalize(r.Success(token))
}

// SearchToken queries the Explorer token search. The Node offers no search
// route, so this tool is Explorer-only.
func (s *Service) SearchToken(ctx context.Context, query string) *response.Response {
	r := response.New()
	if len(query) < minSearchQueryLen {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "query must be at least %d characters", minSearchQueryLen))
	}

	tokens, err := s.client.SearchTokens(ctx, query)
	if err != nil {
		return s.fail(r, err)
	}
	if tokens == nil {
		tokens = []models.Token{}
	}

	limited, truncated := response.ApplyLimit(tokens, s.limits.For("search_results"))
	if truncated {
		r.Truncated(len(tokens))
	}
	return s.finalize(r.Success(limited))
}

// GetTokenHolders computes the holder distribution of a token. includeRaw
// keeps the full holder list on the payload; includeAnalysis keeps the
// distribution metrics.
func (s *Service) GetTokenHolders(ctx context.Context, tokenID string, includeRaw, includeAnalysis bool) *response.Response {
	r := response.New()
	if tokenID == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "token id must not be empty"))
	}

	report, err := s.holders.TokenDistribution(ctx, tokenID)
	if err != nil {
		apiErr := ergo.AsAPIError(err)
		if apiErr.Kind != ergo.KindPartialResult || report == nil {
			return s.fail(r, err)
		}
		// Mid-walk failure: the collected slice is still valuable. The true
		// count is unknown, so original_count stays absent.
		r.Truncated(-1)
		r.WithMessage(apiErr.Message)
	}

	return s.finalize(r.Success(s.shapeDistribution(r, report, includeRaw, includeAnalysis)))
}

// GetCollectionHolders aggregates holders across every member NFT of a
// collection.
func (s *Service) GetCollectionHolders(ctx context.Context, collectionID string, includeRaw, includeAnalysis bool) *response.Response {
	r := response.New()
	if collectionID == "" {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "collection token id must not be empty"))
	}

	report, err := s.holders.CollectionDistribution(ctx, collectionID)
	if err != nil {
		apiErr := ergo.AsAPIError(err)
		if apiErr.Kind != ergo.KindPartialResult || report == nil {
			return s.fail(r, err)
		}
		r.Truncated(-1)
		r.WithMessage(apiErr.Message)
	}

	return s.finalize(r.Success(s.shapeDistribution(r, report, includeRaw, includeAnalysis)))
}

// shapeDistribution applies the include flags and the holder smart-limit.
func (s *Service) shapeDistribution(r *response.Response, report *models.DistributionReport, includeRaw, includeAnalysis bool) *models.DistributionReport {
	if !includeRaw {
		report.Holders = nil
	} else {
		limited, truncated := response.ApplyLimit(report.Holders, s.limits.For("token_holders"))
		if truncated {
			r.Truncated(len(report.Holders))
		}
		report.Holders = limited
	}
	if !includeAnalysis {
		report.Gini = 0
		report.Top10Percent = 0
	}
	return report
}

// SearchCollections looks up NFT collection roots by name.
func (s *Service) SearchCollections(ctx context.Context, query string, limit int) *response.Response {
	r := response.New()
	if len(query) < minSearchQueryLen {
		return s.fail(r, ergo.NewError(ergo.KindInputValidation, "query must be at least %d characters", minSearchQueryLen))
	}
	if limit < 1 {
		limit = 10
	}
	ceiling := s.limits.For("collections")
	if limit > ceiling {
		limit = ceiling
	}

	results, err := s.holders.SearchCollections(ctx, query, limit)
	if err != nil {
		return s.fail(r, err)
	}
	if results == nil {
		results = []models.CollectionInfo{}
	}
	return s.finalize(r.Success(results))
}
