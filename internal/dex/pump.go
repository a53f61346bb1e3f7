package dex

import (
	"github.com/gagliardetto/solana-go"

	"poolscout/internal/model"
)

var pumpPoolDiscriminator = []byte{241, 154, 109, 4, 17, 177, 109, 188}

// PumpAMM is the pump.fun AMM program that graduated bonding-curve tokens
// migrate into.
var PumpAMM = Protocol{
	Name:      "pump-amm",
	Program:   solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA"),
	Tag:       model.TagTier2AMM,
	Mechanism: model.MechanismConstantProduct,
	Layout: Layout{
		Size:          211,
		Discriminator: pumpPoolDiscriminator,
		TokenA:        43,
		TokenB:        75,
		VaultA:        139,
		VaultB:        171,
	},
}
