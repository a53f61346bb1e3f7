package dex

import (
	"github.com/gagliardetto/solana-go"

	"poolscout/internal/model"
)

// SaberStableSwap is the curve-style swap for pegged pairs. Its SwapInfo
// account opens with an initialization flag followed by a pause flag.
var SaberStableSwap = Protocol{
	Name:      "saber-stable-swap",
	Program:   solana.MustPublicKeyFromBase58("SSwpkEEcbUqx4vtoEByFjSkhKdCT862DNVb52nZg1UZ"),
	Tag:       model.TagStableSwap,
	Mechanism: model.MechanismStable,
	Layout: Layout{
		Size:   395,
		Status: Field{Offset: 0, Width: 1},
		VaultA: 107,
		TokenA: 139,
		VaultB: 203,
		TokenB: 235,
	},
}
