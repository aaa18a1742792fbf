package holders

import (
	"math"
	"sort"

	"github.com/ergoscope/analytics-engine/pkg/models"
)

// Gini computes the Gini coefficient of a non-negative amount distribution.
//
// With amounts sorted ascending and zero-indexed, using the sample-corrected
// form so the bounds are exactly [0, 1]:
//
//	G = 1 - 2*(Σ x_i*(n-i)) / ((n-1)*Σ x_i) + 2/(n-1)
//
// 0 = perfect equality, 1 = maximum concentration. Returns 0 when there are
// fewer than two holders or the total is zero.
func Gini(amounts []int64) float64 {
	n := len(amounts)
	if n < 2 {
		return 0.0
	}

	sorted := make([]int64, n)
	copy(sorted, amounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total float64
	var weighted float64
	for i, x := range sorted {
		total += float64(x)
		weighted += float64(x) * float64(n-i)
	}
	if total == 0 {
		return 0.0
	}

	g := 1.0 - 2.0*weighted/(float64(n-1)*total) + 2.0/float64(n-1)
	return math.Min(1.0, math.Max(0.0, g))
}

// TopDecileConcentration sums the top ceil(n/10) holders' amounts as a
// fraction of the total supply. Amounts must be sorted descending.
func TopDecileConcentration(sortedDesc []int64, totalSupply int64) float64 {
	n := len(sortedDesc)
	if n == 0 || totalSupply == 0 {
		return 0.0
	}
	top := (n + 9) / 10 // ceil(n/10)
	var sum int64
	for i := 0; i < top; i++ {
		sum += sortedDesc[i]
	}
	return float64(sum) / float64(totalSupply)
}

// BuildReport turns a holder map into a sorted DistributionReport for the
// given token. Sorting is descending by amount, stable with address as the
// secondary key; percentages are rounded to 6 decimals.
func BuildReport(token *models.Token, holderMap map[string]int64) *models.DistributionReport {
	var totalSupply int64
	holders := make([]models.Holder, 0, len(holderMap))
	for addr, amount := range holderMap {
		totalSupply += amount
		holders = append(holders, models.Holder{Address: addr, Amount: amount})
	}

	sort.Slice(holders, func(i, j int) bool {
		if holders[i].Amount != holders[j].Amount {
			return holders[i].Amount > holders[j].Amount
		}
		return holders[i].Address < holders[j].Address
	})

	amounts := make([]int64, len(holders))
	for i := range holders {
		amounts[i] = holders[i].Amount
		if totalSupply > 0 {
			pct := float64(holders[i].Amount) / float64(totalSupply) * 100.0
			holders[i].Percentage = math.Round(pct*1e6) / 1e6
		}
	}

	return &models.DistributionReport{
		TokenID:      token.ID,
		TokenName:    token.Name,
		Decimals:     token.Decimals,
		TotalSupply:  totalSupply,
		TotalHolders: len(holders),
		Holders:      holders,
		Gini:         Gini(amounts),
		Top10Percent: TopDecileConcentration(amounts, totalSupply),
	}
}
