package token

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// decimalsOffset is where an SPL mint account stores its decimals byte.
const decimalsOffset = 44

// fetchBatchSize caps keys per multiple-accounts call, matching the RPC
// limit of 100.
const fetchBatchSize = 100

// AccountFetcher returns raw data for a batch of accounts, with nil at the
// position of any account that does not exist.
type AccountFetcher interface {
	MultipleAccountData(ctx context.Context, keys []solana.PublicKey) ([][]byte, error)
}

// Resolver resolves SPL mint decimals from the ledger and caches them.
// Decimals are immutable after mint creation, so entries never expire.
type Resolver struct {
	fetcher AccountFetcher
	cache   *lru.Cache[solana.PublicKey, uint8]
	logger  *zap.Logger
}

// NewResolver builds a resolver with an LRU cache of the given size.
func NewResolver(fetcher AccountFetcher, cacheSize int, logger *zap.Logger) (*Resolver, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("account fetcher is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New[solana.PublicKey, uint8](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("decimals cache: %w", err)
	}
	return &Resolver{fetcher: fetcher, cache: cache, logger: logger}, nil
}

// Decimals returns decimals for every resolvable mint in the input. Mints
// whose account is missing or malformed are simply absent from the result,
// so callers keep whatever default they already hold.
func (r *Resolver) Decimals(ctx context.Context, mints []solana.PublicKey) (map[solana.PublicKey]uint8, error) {
	out := make(map[solana.PublicKey]uint8, len(mints))
	missing := make([]solana.PublicKey, 0, len(mints))
	seen := make(map[solana.PublicKey]bool, len(mints))

	for _, mint := range mints {
		if mint.IsZero() || seen[mint] {
			continue
		}
		seen[mint] = true
		if d, ok := r.cache.Get(mint); ok {
			out[mint] = d
			continue
		}
		missing = append(missing, mint)
	}

	for start := 0; start < len(missing); start += fetchBatchSize {
		end := start + fetchBatchSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[start:end]

		datas, err := r.fetcher.MultipleAccountData(ctx, batch)
		if err != nil {
			return out, fmt.Errorf("fetch mint accounts: %w", err)
		}
		if len(datas) != len(batch) {
			return out, fmt.Errorf("fetch mint accounts: %d results for %d keys", len(datas), len(batch))
		}
		for i, data := range datas {
			if len(data) <= decimalsOffset {
				r.logger.Debug("mint account unusable",
					zap.String("mint", batch[i].String()),
					zap.Int("len", len(data)))
				continue
			}
			d := data[decimalsOffset]
			r.cache.Add(batch[i], d)
			out[batch[i]] = d
		}
	}
	return out, nil
}

// CacheLen reports how many mints are currently cached.
func (r *Resolver) CacheLen() int {
	return r.cache.Len()
}
