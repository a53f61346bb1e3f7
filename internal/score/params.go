package score

import (
	"poolscout/internal/model"
	"poolscout/internal/token"
)

// Params holds the tunable scoring weights. The values are empirically
// chosen, not derived; hosts override them wholesale through config.
type Params struct {
	// LiquidityWeight scales the log10 contribution of known USD liquidity.
	LiquidityWeight float64 `json:"liquidity_weight"`

	// PreferredQuoteBonus is granted when either side matches the caller's
	// requested quote. Sized to dominate every other signal.
	PreferredQuoteBonus float64 `json:"preferred_quote_bonus"`

	// QuotePriorities grants a per-side bonus for recognized quote assets,
	// keyed by base58 mint.
	QuotePriorities map[string]float64 `json:"quote_priorities"`

	// TierBonuses weight protocol trust tiers; unlisted tags score zero.
	TierBonuses map[model.ProtocolTag]float64 `json:"tier_bonuses"`

	// MechanismBonuses weight curve families by general applicability.
	MechanismBonuses map[model.Mechanism]float64 `json:"mechanism_bonuses"`

	// FreshnessBonus is granted to records updated within FreshnessWindow.
	FreshnessBonus float64 `json:"freshness_bonus"`
}

// DefaultParams returns the built-in weights.
func DefaultParams() Params {
	return Params{
		LiquidityWeight:     10,
		PreferredQuoteBonus: 1000,
		QuotePriorities:     token.DefaultQuotePriorities(),
		TierBonuses: map[model.ProtocolTag]float64{
			model.TagTier1AMM:     80,
			model.TagTier2AMM:     60,
			model.TagConcentrated: 50,
			model.TagStableSwap:   40,
		},
		MechanismBonuses: map[model.Mechanism]float64{
			model.MechanismConstantProduct: 15,
			model.MechanismConcentrated:    10,
			model.MechanismStable:          5,
		},
		FreshnessBonus: 10,
	}
}
