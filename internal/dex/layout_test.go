package dex

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"poolscout/internal/model"
)

var (
	testWSOL = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	testUSDC = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

func TestDecodeRaydiumV4(t *testing.T) {
	data := buildAccount(RaydiumV4, testWSOL, testUSDC, 1)
	writeField(data, RaydiumV4.Layout.DecimalsA, 9)
	writeField(data, RaydiumV4.Layout.DecimalsB, 6)

	addr := testKey(0xAA)
	rec, err := RaydiumV4.DecodePool(addr, data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Address != addr {
		t.Fatalf("address mismatch: %s", rec.Address)
	}
	if rec.TokenA != testWSOL || rec.TokenB != testUSDC {
		t.Fatalf("mints mismatch: %s / %s", rec.TokenA, rec.TokenB)
	}
	if rec.VaultA != testKey(0x01) || rec.VaultB != testKey(0x02) {
		t.Fatalf("vaults mismatch: %s / %s", rec.VaultA, rec.VaultB)
	}
	if rec.Protocol != "raydium-v4" || rec.Tag != model.TagTier1AMM {
		t.Fatalf("protocol fields mismatch: %+v", rec)
	}
	if rec.OwnerProgram != RaydiumV4.Program {
		t.Fatalf("owner program mismatch: %s", rec.OwnerProgram)
	}
	if rec.DecimalsA != 9 || rec.DecimalsB != 6 || rec.DecimalsAssumed {
		t.Fatalf("decimals mismatch: %d/%d assumed=%v", rec.DecimalsA, rec.DecimalsB, rec.DecimalsAssumed)
	}
	if rec.LastUpdated.IsZero() {
		t.Fatalf("decode should stamp the record")
	}
	if rec.ReserveA != 0 || rec.ReserveB != 0 {
		t.Fatalf("reserves should stay zero at decode time")
	}
}

func TestDecodeAllProtocols(t *testing.T) {
	for _, p := range DefaultRegistry().All() {
		t.Run(p.Name, func(t *testing.T) {
			data := buildAccount(p, testWSOL, testUSDC, 1)
			rec, err := p.DecodePool(testKey(0xAB), data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if rec.Protocol != p.Name {
				t.Fatalf("protocol name mismatch: %s", rec.Protocol)
			}
			if rec.TokenA != testWSOL || rec.TokenB != testUSDC {
				t.Fatalf("mints mismatch: %s / %s", rec.TokenA, rec.TokenB)
			}
		})
	}
}

func TestDecodePermissiveStatus(t *testing.T) {
	// Lifecycle values other than zero must pass, including ones the
	// program may add later.
	for _, status := range []uint64{1, 4, 6, 250} {
		data := buildAccount(RaydiumV4, testWSOL, testUSDC, status)
		if _, err := RaydiumV4.DecodePool(testKey(0xAC), data); err != nil {
			t.Fatalf("status %d rejected: %v", status, err)
		}
	}
}

func TestDecodeRejectsUninitialized(t *testing.T) {
	data := buildAccount(RaydiumV4, testWSOL, testUSDC, 0)
	if _, err := RaydiumV4.DecodePool(testKey(0xAD), data); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("want ErrNotInitialized, got %v", err)
	}

	data = buildAccount(OrcaTokenSwap, testWSOL, testUSDC, 0)
	if _, err := OrcaTokenSwap.DecodePool(testKey(0xAD), data); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("want ErrNotInitialized for token-swap, got %v", err)
	}
}

func TestDecodeSizeMismatch(t *testing.T) {
	data := buildAccount(RaydiumV4, testWSOL, testUSDC, 1)

	if _, err := RaydiumV4.DecodePool(testKey(0xAE), data[:700]); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("short buffer: want ErrSizeMismatch, got %v", err)
	}
	if _, err := RaydiumV4.DecodePool(testKey(0xAE), append(data, 0)); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("long buffer: want ErrSizeMismatch, got %v", err)
	}
	if _, err := RaydiumV4.DecodePool(testKey(0xAE), nil); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("nil buffer: want ErrSizeMismatch, got %v", err)
	}
}

func TestDecodeDiscriminatorMismatch(t *testing.T) {
	data := buildAccount(OrcaWhirlpool, testWSOL, testUSDC, 1)
	data[0] ^= 0xFF
	if _, err := OrcaWhirlpool.DecodePool(testKey(0xAF), data); !errors.Is(err, ErrDiscriminator) {
		t.Fatalf("want ErrDiscriminator, got %v", err)
	}
}

func TestDecodeRejectsBadMints(t *testing.T) {
	data := buildAccount(MeteoraDLMM, testWSOL, solana.PublicKey{}, 1)
	if _, err := MeteoraDLMM.DecodePool(testKey(0xB0), data); !errors.Is(err, ErrNullMint) {
		t.Fatalf("want ErrNullMint, got %v", err)
	}

	data = buildAccount(MeteoraDLMM, testWSOL, testWSOL, 1)
	if _, err := MeteoraDLMM.DecodePool(testKey(0xB0), data); !errors.Is(err, ErrSameMint) {
		t.Fatalf("want ErrSameMint, got %v", err)
	}
}

func TestDecodeAssumedDecimals(t *testing.T) {
	// Whirlpool accounts carry no decimals at all.
	data := buildAccount(OrcaWhirlpool, testWSOL, testUSDC, 1)
	rec, err := OrcaWhirlpool.DecodePool(testKey(0xB1), data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.DecimalsA != DefaultBaseDecimals || rec.DecimalsB != DefaultQuoteDecimals {
		t.Fatalf("defaults mismatch: %d/%d", rec.DecimalsA, rec.DecimalsB)
	}
	if !rec.DecimalsAssumed {
		t.Fatalf("assumed flag should be set")
	}

	// Implausible stored values fall back too.
	data = buildAccount(RaydiumV4, testWSOL, testUSDC, 1)
	writeField(data, RaydiumV4.Layout.DecimalsA, 255)
	writeField(data, RaydiumV4.Layout.DecimalsB, 6)
	rec, err = RaydiumV4.DecodePool(testKey(0xB2), data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.DecimalsA != DefaultBaseDecimals || rec.DecimalsB != 6 {
		t.Fatalf("fallback mismatch: %d/%d", rec.DecimalsA, rec.DecimalsB)
	}
	if !rec.DecimalsAssumed {
		t.Fatalf("assumed flag should be set when any side falls back")
	}
}

func buildAccount(p Protocol, tokenA, tokenB solana.PublicKey, status uint64) []byte {
	l := p.Layout
	data := make([]byte, l.Size)
	copy(data, l.Discriminator)
	if l.Status.Width != 0 {
		writeField(data, l.Status, status)
	}
	copy(data[l.TokenA:], tokenA.Bytes())
	copy(data[l.TokenB:], tokenB.Bytes())
	copy(data[l.VaultA:], testKey(0x01).Bytes())
	copy(data[l.VaultB:], testKey(0x02).Bytes())
	return data
}

func writeField(data []byte, f Field, v uint64) {
	switch f.Width {
	case 1:
		data[f.Offset] = byte(v)
	case 8:
		binary.LittleEndian.PutUint64(data[f.Offset:], v)
	}
}

func testKey(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}
