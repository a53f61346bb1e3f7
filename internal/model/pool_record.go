package model

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// PoolRecord is the normalized, protocol-agnostic representation of a
// discovered liquidity pool account.
type PoolRecord struct {
	Address      solana.PublicKey `json:"address"`
	TokenA       solana.PublicKey `json:"token_a"`
	TokenB       solana.PublicKey `json:"token_b"`
	OwnerProgram solana.PublicKey `json:"owner_program"`
	Protocol     string           `json:"protocol"`
	Tag          ProtocolTag      `json:"protocol_tag"`
	Mechanism    Mechanism        `json:"mechanism"`
	VaultA       solana.PublicKey `json:"vault_a"`
	VaultB       solana.PublicKey `json:"vault_b"`

	// DecimalsAssumed marks records whose decimals were substituted with the
	// documented defaults rather than decoded or resolved from the mint.
	DecimalsA       uint8 `json:"decimals_a"`
	DecimalsB       uint8 `json:"decimals_b"`
	DecimalsAssumed bool  `json:"decimals_assumed"`

	// Reserves are raw base-unit balances; zero until a reserve fetch runs.
	ReserveA uint64 `json:"reserve_a"`
	ReserveB uint64 `json:"reserve_b"`

	// Enrichment fields filled by the host's pricing layer, absent during
	// pure discovery.
	LiquidityUSD float64 `json:"liquidity_usd,omitempty"`
	Volume24hUSD float64 `json:"volume_24h_usd,omitempty"`

	LastUpdated time.Time `json:"last_updated"`
}

// HasToken reports whether the pool trades the given mint on either side.
func (p PoolRecord) HasToken(mint solana.PublicKey) bool {
	return p.TokenA == mint || p.TokenB == mint
}

// OtherSide returns the mint paired against the given one. The second return
// is false when the pool does not trade the given mint at all.
func (p PoolRecord) OtherSide(mint solana.PublicKey) (solana.PublicKey, bool) {
	switch mint {
	case p.TokenA:
		return p.TokenB, true
	case p.TokenB:
		return p.TokenA, true
	}
	return solana.PublicKey{}, false
}

// FreshWithin reports whether the record was produced within the window
// ending at now.
func (p PoolRecord) FreshWithin(window time.Duration, now time.Time) bool {
	if p.LastUpdated.IsZero() {
		return false
	}
	return now.Sub(p.LastUpdated) <= window
}
