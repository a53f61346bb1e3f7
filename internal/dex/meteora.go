package dex

import (
	"github.com/gagliardetto/solana-go"

	"poolscout/internal/model"
)

var lbPairDiscriminator = []byte{33, 11, 49, 98, 181, 101, 177, 13}

// MeteoraDLMM is the bin-liquidity LbPair program. The status byte at
// offset 82 uses zero for enabled, so it cannot serve as an initialization
// marker and the discriminator alone gates decoding.
var MeteoraDLMM = Protocol{
	Name:      "meteora-dlmm",
	Program:   solana.MustPublicKeyFromBase58("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"),
	Tag:       model.TagConcentrated,
	Mechanism: model.MechanismConcentrated,
	Layout: Layout{
		Size:          904,
		Discriminator: lbPairDiscriminator,
		TokenA:        88,
		TokenB:        120,
		VaultA:        152,
		VaultB:        184,
	},
}
