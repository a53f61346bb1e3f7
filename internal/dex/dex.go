package dex

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"

	"poolscout/internal/model"
)

// Decode failures that mark an account as not a live pool of the protocol.
// Scans skip and count these rather than aborting.
var (
	ErrSizeMismatch   = errors.New("account size does not match layout")
	ErrDiscriminator  = errors.New("account discriminator mismatch")
	ErrNotInitialized = errors.New("pool is not initialized")
	ErrNullMint       = errors.New("pool mint is the null key")
	ErrSameMint       = errors.New("pool mints are identical")
)

// Default decimals substituted when a layout does not carry the field or the
// stored value is implausible. Records built this way are flagged.
const (
	DefaultBaseDecimals  = 9
	DefaultQuoteDecimals = 6
)

// Protocol describes one supported DEX program and the shape of its pool
// accounts.
type Protocol struct {
	Name      string
	Program   solana.PublicKey
	Tag       model.ProtocolTag
	Mechanism model.Mechanism
	Layout    Layout
}

// DecodePool interprets raw account data according to the protocol's layout
// and returns a normalized record stamped with the decode time. Reserves are
// not read here; a later vault fetch fills them.
func (p Protocol) DecodePool(address solana.PublicKey, data []byte) (model.PoolRecord, error) {
	l := p.Layout
	if len(data) != l.Size {
		return model.PoolRecord{}, ErrSizeMismatch
	}
	if !l.matchesDiscriminator(data) {
		return model.PoolRecord{}, ErrDiscriminator
	}
	// Status handling is deliberately permissive: only the documented
	// uninitialized sentinel rejects, every other observed value passes.
	if l.Status.Width != 0 && readUint(data, l.Status) == 0 {
		return model.PoolRecord{}, ErrNotInitialized
	}

	tokenA := readKey(data, l.TokenA)
	tokenB := readKey(data, l.TokenB)
	if tokenA.IsZero() || tokenB.IsZero() {
		return model.PoolRecord{}, ErrNullMint
	}
	if tokenA == tokenB {
		return model.PoolRecord{}, ErrSameMint
	}

	decA, okA := readDecimals(data, l.DecimalsA, DefaultBaseDecimals)
	decB, okB := readDecimals(data, l.DecimalsB, DefaultQuoteDecimals)

	return model.PoolRecord{
		Address:         address,
		TokenA:          tokenA,
		TokenB:          tokenB,
		OwnerProgram:    p.Program,
		Protocol:        p.Name,
		Tag:             p.Tag,
		Mechanism:       p.Mechanism,
		VaultA:          readKey(data, l.VaultA),
		VaultB:          readKey(data, l.VaultB),
		DecimalsA:       decA,
		DecimalsB:       decB,
		DecimalsAssumed: !okA || !okB,
		LastUpdated:     time.Now(),
	}, nil
}
