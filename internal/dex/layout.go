package dex

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Layout fixes the byte offsets of the fields every supported pool account
// format shares. Offsets are into the raw account data, after any
// discriminator prefix the program writes.
type Layout struct {
	// Size is the exact data length the program allocates for a pool
	// account; anything else is a filter false positive.
	Size int

	// Discriminator is the 8-byte account prefix anchor programs write.
	// Nil for pre-anchor programs.
	Discriminator []byte

	TokenA int
	TokenB int
	VaultA int
	VaultB int

	// Status locates the initialization marker. A stored zero is the
	// uninitialized sentinel; a zero-width field means the format has no
	// marker that can distinguish live from dead.
	Status Field

	// DecimalsA and DecimalsB locate per-side decimals when the format
	// stores them. Zero-width fields fall back to the documented defaults.
	DecimalsA Field
	DecimalsB Field
}

// Field locates a little-endian unsigned integer inside account data. Width
// is 1 or 8 bytes; zero means the format does not carry the field.
type Field struct {
	Offset int
	Width  int
}

func (l Layout) matchesDiscriminator(data []byte) bool {
	if len(l.Discriminator) == 0 {
		return true
	}
	return bytes.Equal(data[:len(l.Discriminator)], l.Discriminator)
}

// validate checks that every declared field fits inside the account size.
func (l Layout) validate() error {
	if l.Size <= 0 {
		return fmt.Errorf("non-positive account size %d", l.Size)
	}
	if len(l.Discriminator) > l.Size {
		return fmt.Errorf("discriminator longer than account")
	}
	for _, off := range []int{l.TokenA, l.TokenB, l.VaultA, l.VaultB} {
		if off < 0 || off+solana.PublicKeyLength > l.Size {
			return fmt.Errorf("key offset %d out of range for size %d", off, l.Size)
		}
	}
	for _, f := range []Field{l.Status, l.DecimalsA, l.DecimalsB} {
		if f.Width == 0 {
			continue
		}
		if f.Width != 1 && f.Width != 8 {
			return fmt.Errorf("unsupported field width %d", f.Width)
		}
		if f.Offset < 0 || f.Offset+f.Width > l.Size {
			return fmt.Errorf("field offset %d out of range for size %d", f.Offset, l.Size)
		}
	}
	return nil
}

func readKey(data []byte, offset int) solana.PublicKey {
	return solana.PublicKeyFromBytes(data[offset : offset+solana.PublicKeyLength])
}

func readUint(data []byte, f Field) uint64 {
	switch f.Width {
	case 1:
		return uint64(data[f.Offset])
	case 8:
		return binary.LittleEndian.Uint64(data[f.Offset : f.Offset+8])
	}
	return 0
}

// readDecimals returns the stored decimals when present and plausible, or
// the fallback. The second return is false when the fallback was used.
func readDecimals(data []byte, f Field, fallback uint8) (uint8, bool) {
	if f.Width == 0 {
		return fallback, false
	}
	v := readUint(data, f)
	if v > 18 {
		return fallback, false
	}
	return uint8(v), true
}
