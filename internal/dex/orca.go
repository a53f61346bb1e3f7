package dex

import (
	"github.com/gagliardetto/solana-go"

	"poolscout/internal/model"
)

var whirlpoolDiscriminator = []byte{63, 149, 209, 12, 225, 128, 99, 9}

// OrcaWhirlpool is Orca's concentrated-liquidity program. Whirlpool accounts
// carry no decimals, so records take the documented defaults.
var OrcaWhirlpool = Protocol{
	Name:      "orca-whirlpool",
	Program:   solana.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"),
	Tag:       model.TagConcentrated,
	Mechanism: model.MechanismConcentrated,
	Layout: Layout{
		Size:          653,
		Discriminator: whirlpoolDiscriminator,
		TokenA:        101,
		VaultA:        133,
		TokenB:        181,
		VaultB:        213,
	},
}

// OrcaTokenSwap is the legacy token-swap v2 program. Byte 0 is the struct
// version, byte 1 the initialization flag.
var OrcaTokenSwap = Protocol{
	Name:      "orca-token-swap",
	Program:   solana.MustPublicKeyFromBase58("9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP"),
	Tag:       model.TagTier2AMM,
	Mechanism: model.MechanismConstantProduct,
	Layout: Layout{
		Size:   324,
		Status: Field{Offset: 1, Width: 1},
		VaultA: 35,
		VaultB: 67,
		TokenA: 131,
		TokenB: 163,
	},
}
