package dex

import (
	"github.com/gagliardetto/solana-go"

	"poolscout/internal/model"
)

// poolStateDiscriminator prefixes the PoolState account of both the CLMM
// and CPMM programs.
var poolStateDiscriminator = []byte{247, 237, 227, 245, 215, 195, 222, 70}

// RaydiumV4 is the pre-anchor Liquidity Pool V4 program. The status word is
// a lifecycle enum whose only dead value is zero.
var RaydiumV4 = Protocol{
	Name:      "raydium-v4",
	Program:   solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"),
	Tag:       model.TagTier1AMM,
	Mechanism: model.MechanismConstantProduct,
	Layout: Layout{
		Size:      752,
		Status:    Field{Offset: 0, Width: 8},
		DecimalsA: Field{Offset: 32, Width: 8},
		DecimalsB: Field{Offset: 40, Width: 8},
		VaultA:    336,
		VaultB:    368,
		TokenA:    400,
		TokenB:    432,
	},
}

// RaydiumCPMM is the constant-product successor program. Its status byte
// gates individual operations and zero means fully enabled, so it is not an
// initialization marker.
var RaydiumCPMM = Protocol{
	Name:      "raydium-cpmm",
	Program:   solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"),
	Tag:       model.TagTier1AMM,
	Mechanism: model.MechanismConstantProduct,
	Layout: Layout{
		Size:          637,
		Discriminator: poolStateDiscriminator,
		VaultA:        72,
		VaultB:        104,
		TokenA:        168,
		TokenB:        200,
		DecimalsA:     Field{Offset: 331, Width: 1},
		DecimalsB:     Field{Offset: 332, Width: 1},
	},
}

// RaydiumCLMM is the concentrated-liquidity program.
var RaydiumCLMM = Protocol{
	Name:      "raydium-clmm",
	Program:   solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"),
	Tag:       model.TagConcentrated,
	Mechanism: model.MechanismConcentrated,
	Layout: Layout{
		Size:          1544,
		Discriminator: poolStateDiscriminator,
		TokenA:        73,
		TokenB:        105,
		VaultA:        137,
		VaultB:        169,
		DecimalsA:     Field{Offset: 233, Width: 1},
		DecimalsB:     Field{Offset: 234, Width: 1},
	},
}
