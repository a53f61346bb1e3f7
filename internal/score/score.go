package score

import (
	"math"
	"sort"
	"time"

	"github.com/gagliardetto/solana-go"

	"poolscout/internal/model"
)

// FreshnessWindow is how recently a record must have been updated to earn
// the freshness bonus.
const FreshnessWindow = 5 * time.Minute

// PoolScore pairs a pool with its additive score and the per-signal
// breakdown.
type PoolScore struct {
	Pool       model.PoolRecord `json:"pool"`
	Score      float64          `json:"score"`
	Components Components       `json:"components"`
}

// Components itemizes the independent signals that sum to the score.
type Components struct {
	Liquidity      float64 `json:"liquidity"`
	PreferredQuote float64 `json:"preferred_quote"`
	QuoteSides     float64 `json:"quote_sides"`
	TrustTier      float64 `json:"trust_tier"`
	Mechanism      float64 `json:"mechanism"`
	Freshness      float64 `json:"freshness"`
}

// Score rates a single pool at the given time. A zero preferred key means
// the caller expressed no quote preference. Absent signals contribute
// nothing; they never penalize.
func Score(p model.PoolRecord, preferred solana.PublicKey, params Params, now time.Time) PoolScore {
	var c Components

	if p.LiquidityUSD > 0 {
		c.Liquidity = params.LiquidityWeight * math.Log10(1+p.LiquidityUSD)
	}
	if !preferred.IsZero() && p.HasToken(preferred) {
		c.PreferredQuote = params.PreferredQuoteBonus
	}
	c.QuoteSides = params.QuotePriorities[p.TokenA.String()] + params.QuotePriorities[p.TokenB.String()]
	c.TrustTier = params.TierBonuses[p.Tag]
	c.Mechanism = params.MechanismBonuses[p.Mechanism]
	if p.FreshWithin(FreshnessWindow, now) {
		c.Freshness = params.FreshnessBonus
	}

	return PoolScore{
		Pool:       p,
		Score:      c.Liquidity + c.PreferredQuote + c.QuoteSides + c.TrustTier + c.Mechanism + c.Freshness,
		Components: c,
	}
}

// Rank scores the set and returns the positively scored pools in
// descending order. Equal scores keep their input order.
func Rank(pools []model.PoolRecord, preferred solana.PublicKey, params Params, now time.Time) []PoolScore {
	scored := make([]PoolScore, 0, len(pools))
	for _, p := range pools {
		s := Score(p, preferred, params, now)
		if s.Score <= 0 {
			continue
		}
		scored = append(scored, s)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// SelectBest returns the highest-scoring pool. The second return is false
// when the set is empty or nothing scored positive.
func SelectBest(pools []model.PoolRecord, preferred solana.PublicKey, params Params, now time.Time) (model.PoolRecord, bool) {
	var best model.PoolRecord
	var bestScore float64
	found := false
	for _, p := range pools {
		s := Score(p, preferred, params, now)
		if s.Score <= 0 {
			continue
		}
		// Strictly greater keeps the first of equals, so a fixed input
		// order always selects the same pool.
		if !found || s.Score > bestScore {
			best, bestScore, found = p, s.Score, true
		}
	}
	return best, found
}
