package model

// ProtocolTag classifies a protocol's standing for scoring purposes.
type ProtocolTag string

const (
	TagTier1AMM     ProtocolTag = "tier1-amm"
	TagTier2AMM     ProtocolTag = "tier2-amm"
	TagConcentrated ProtocolTag = "concentrated-liquidity"
	TagStableSwap   ProtocolTag = "stable-swap"
)

// Mechanism names the pricing curve family a pool uses.
type Mechanism string

const (
	MechanismConstantProduct Mechanism = "constant-product"
	MechanismConcentrated    Mechanism = "concentrated"
	MechanismStable          Mechanism = "stable"
)
