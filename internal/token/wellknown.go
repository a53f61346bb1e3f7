package token

import "github.com/gagliardetto/solana-go"

// Canonical mints of the assets conventionally quoted against: the wrapped
// native asset, the major USD stablecoins, and the liquid-staking SOL
// derivatives.
var (
	WSOL    = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	USDC    = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	USDT    = solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
	MSOL    = solana.MustPublicKeyFromBase58("mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So")
	JitoSOL = solana.MustPublicKeyFromBase58("J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn")
	BSOL    = solana.MustPublicKeyFromBase58("bSo13r4TkiE4KumL71LsHTPpL2euBYLFx6h9HP3piy1")
	StSOL   = solana.MustPublicKeyFromBase58("7dHbWXmci3dT8UFYWYZweBLXgycu7Y3iL6trKn1Y7ARj")
)

// DefaultQuotePriorities weights the recognized quote assets for ranking,
// keyed by base58 mint. Stablecoins outrank the native asset, which
// outranks its staking derivatives.
func DefaultQuotePriorities() map[string]float64 {
	return map[string]float64{
		USDC.String():    50,
		USDT.String():    45,
		WSOL.String():    40,
		MSOL.String():    30,
		JitoSOL.String(): 28,
		BSOL.String():    26,
		StSOL.String():   24,
	}
}
