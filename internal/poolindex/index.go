package poolindex

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"poolscout/internal/model"
)

// Index is the in-memory pool store. The address map is the source of
// truth; the per-token projection is derived from it on every merge and
// never patched in place, so the two can not drift.
type Index struct {
	mu          sync.RWMutex
	byAddress   map[solana.PublicKey]model.PoolRecord
	addrOrder   []solana.PublicKey
	byToken     map[solana.PublicKey][]solana.PublicKey
	lastIndexed time.Time
	refreshing  bool
}

// New returns an empty index.
func New() *Index {
	return &Index{
		byAddress: make(map[solana.PublicKey]model.PoolRecord),
		byToken:   make(map[solana.PublicKey][]solana.PublicKey),
	}
}

// Merge upserts records by address, rebuilds the token projection and
// stamps the index. It reports how many addresses were new and how many
// were overwritten.
func (x *Index) Merge(records []model.PoolRecord) (added, updated int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	added, updated = x.mergeLocked(records)
	x.lastIndexed = time.Now()
	return added, updated
}

// Load bulk-inserts previously persisted records and restores the stamp
// they were indexed at, for warm starts. A Load never moves the stamp
// backwards.
func (x *Index) Load(records []model.PoolRecord, indexedAt time.Time) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	added, _ := x.mergeLocked(records)
	if indexedAt.After(x.lastIndexed) {
		x.lastIndexed = indexedAt
	}
	return added
}

func (x *Index) mergeLocked(records []model.PoolRecord) (added, updated int) {
	for _, rec := range records {
		if rec.Address.IsZero() || rec.TokenA == rec.TokenB {
			continue
		}
		if _, exists := x.byAddress[rec.Address]; exists {
			updated++
		} else {
			x.addrOrder = append(x.addrOrder, rec.Address)
			added++
		}
		x.byAddress[rec.Address] = rec
	}
	x.rebuildTokenProjectionLocked()
	return added, updated
}

// rebuildTokenProjectionLocked recomputes byToken from byAddress.
// Iterating addrOrder instead of the map keeps each token's pool list in
// first-insertion order, which fixes ranking ties across runs.
func (x *Index) rebuildTokenProjectionLocked() {
	byToken := make(map[solana.PublicKey][]solana.PublicKey, len(x.byToken))
	for _, addr := range x.addrOrder {
		rec := x.byAddress[addr]
		byToken[rec.TokenA] = append(byToken[rec.TokenA], addr)
		byToken[rec.TokenB] = append(byToken[rec.TokenB], addr)
	}
	x.byToken = byToken
}

// PoolsForToken returns every indexed pool trading the mint, in stable
// first-insertion order.
func (x *Index) PoolsForToken(mint solana.PublicKey) []model.PoolRecord {
	x.mu.RLock()
	defer x.mu.RUnlock()
	addrs := x.byToken[mint]
	if len(addrs) == 0 {
		return nil
	}
	out := make([]model.PoolRecord, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, x.byAddress[addr])
	}
	return out
}

// Pool returns the record stored for an address.
func (x *Index) Pool(addr solana.PublicKey) (model.PoolRecord, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	rec, ok := x.byAddress[addr]
	return rec, ok
}

// All returns every record in first-insertion order.
func (x *Index) All() []model.PoolRecord {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]model.PoolRecord, 0, len(x.addrOrder))
	for _, addr := range x.addrOrder {
		out = append(out, x.byAddress[addr])
	}
	return out
}

// Len returns the number of indexed pools.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byAddress)
}

// LastIndexed returns when the index last absorbed records.
func (x *Index) LastIndexed() time.Time {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.lastIndexed
}

// Stats summarizes the index contents.
func (x *Index) Stats() model.IndexStats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	byProto := make(map[string]int)
	for _, rec := range x.byAddress {
		byProto[rec.Protocol]++
	}
	return model.IndexStats{
		TotalPools:      len(x.byAddress),
		PoolsByProtocol: byProto,
		LastIndexed:     x.lastIndexed,
	}
}

// TryBeginRefresh reports whether the index is stale against the interval
// and, if so, marks a refresh pass as running. At most one pass runs at a
// time; a true return must be paired with EndRefresh.
func (x *Index) TryBeginRefresh(interval time.Duration, now time.Time) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.refreshing {
		return false
	}
	if !x.lastIndexed.IsZero() && now.Sub(x.lastIndexed) < interval {
		return false
	}
	x.refreshing = true
	return true
}

// EndRefresh clears the refresh-in-progress guard.
func (x *Index) EndRefresh() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.refreshing = false
}

// Refreshing reports whether a refresh pass is currently running.
func (x *Index) Refreshing() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.refreshing
}

// OldestTokens returns up to n distinct mints whose stored pools carry the
// oldest timestamps. A refresh pass re-discovers these first.
func (x *Index) OldestTokens(n int) []solana.PublicKey {
	x.mu.RLock()
	defer x.mu.RUnlock()
	oldest := make(map[solana.PublicKey]time.Time, len(x.byAddress))
	for _, rec := range x.byAddress {
		for _, mint := range [2]solana.PublicKey{rec.TokenA, rec.TokenB} {
			when, ok := oldest[mint]
			if !ok || rec.LastUpdated.Before(when) {
				oldest[mint] = rec.LastUpdated
			}
		}
	}
	toks := make([]solana.PublicKey, 0, len(oldest))
	for mint := range oldest {
		toks = append(toks, mint)
	}
	sort.Slice(toks, func(i, j int) bool {
		ti, tj := oldest[toks[i]], oldest[toks[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return bytes.Compare(toks[i][:], toks[j][:]) < 0
	})
	if n > 0 && len(toks) > n {
		toks = toks[:n]
	}
	return toks
}
