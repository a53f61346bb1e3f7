package poolindex

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolscout/internal/model"
)

var (
	mintSOL  = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	mintUSDC = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	mintUSDT = solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
	mintMSOL = solana.MustPublicKeyFromBase58("mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So")
)

func TestMergeUpsertsByAddress(t *testing.T) {
	idx := New()

	first := rec(1, "raydium-v4", mintSOL, mintUSDC, 0)
	added, updated := idx.Merge([]model.PoolRecord{first})
	require.Equal(t, 1, added)
	require.Zero(t, updated)

	first.ReserveA = 42
	added, updated = idx.Merge([]model.PoolRecord{first})
	assert.Zero(t, added)
	assert.Equal(t, 1, updated)
	assert.Equal(t, 1, idx.Len())

	got, ok := idx.Pool(first.Address)
	require.True(t, ok)
	assert.Equal(t, uint64(42), got.ReserveA)

	assert.Len(t, idx.PoolsForToken(mintSOL), 1, "overwrite must not duplicate the token projection")
}

func TestProjectionFollowsAddressTruth(t *testing.T) {
	idx := New()

	p := rec(2, "raydium-v4", mintSOL, mintUSDC, 0)
	idx.Merge([]model.PoolRecord{p})
	require.Len(t, idx.PoolsForToken(mintUSDC), 1)

	// The same address re-decodes with a different second side; the
	// projection must follow the rebuilt truth, not accumulate.
	p.TokenB = mintUSDT
	idx.Merge([]model.PoolRecord{p})

	assert.Empty(t, idx.PoolsForToken(mintUSDC))
	assert.Len(t, idx.PoolsForToken(mintUSDT), 1)
	assert.Len(t, idx.PoolsForToken(mintSOL), 1)
}

func TestMergeSkipsMalformed(t *testing.T) {
	idx := New()

	bad := rec(3, "pump-amm", mintSOL, mintSOL, 0)
	var zeroAddr model.PoolRecord
	zeroAddr.TokenA, zeroAddr.TokenB = mintSOL, mintUSDC

	added, updated := idx.Merge([]model.PoolRecord{bad, zeroAddr})
	assert.Zero(t, added)
	assert.Zero(t, updated)
	assert.Zero(t, idx.Len())
}

func TestPoolsForTokenKeepsInsertionOrder(t *testing.T) {
	idx := New()

	p1 := rec(10, "raydium-v4", mintSOL, mintUSDC, 0)
	p2 := rec(11, "orca-whirlpool", mintSOL, mintUSDT, 0)
	p3 := rec(12, "meteora-dlmm", mintSOL, mintMSOL, 0)
	idx.Merge([]model.PoolRecord{p1, p2, p3})

	// Overwriting the middle record must not move it.
	p2.ReserveB = 7
	idx.Merge([]model.PoolRecord{p2})

	pools := idx.PoolsForToken(mintSOL)
	require.Len(t, pools, 3)
	assert.Equal(t, p1.Address, pools[0].Address)
	assert.Equal(t, p2.Address, pools[1].Address)
	assert.Equal(t, p3.Address, pools[2].Address)

	all := idx.All()
	require.Len(t, all, 3)
	assert.Equal(t, p1.Address, all[0].Address)
}

func TestStats(t *testing.T) {
	idx := New()
	assert.Zero(t, idx.Stats().TotalPools)

	idx.Merge([]model.PoolRecord{
		rec(20, "raydium-v4", mintSOL, mintUSDC, 0),
		rec(21, "raydium-v4", mintMSOL, mintUSDC, 0),
		rec(22, "orca-whirlpool", mintSOL, mintUSDT, 0),
	})

	stats := idx.Stats()
	assert.Equal(t, 3, stats.TotalPools)
	assert.Equal(t, 2, stats.PoolsByProtocol["raydium-v4"])
	assert.Equal(t, 1, stats.PoolsByProtocol["orca-whirlpool"])
	assert.WithinDuration(t, time.Now(), stats.LastIndexed, time.Minute)
}

func TestRefreshGuard(t *testing.T) {
	idx := New()
	idx.Merge([]model.PoolRecord{rec(30, "pump-amm", mintSOL, mintUSDC, 0)})

	assert.False(t, idx.TryBeginRefresh(10*time.Minute, time.Now()),
		"freshly merged index must not refresh")

	later := time.Now().Add(time.Hour)
	require.True(t, idx.TryBeginRefresh(10*time.Minute, later))
	assert.True(t, idx.Refreshing())
	assert.False(t, idx.TryBeginRefresh(10*time.Minute, later),
		"second pass must be blocked while one runs")

	idx.EndRefresh()
	assert.False(t, idx.Refreshing())
	require.True(t, idx.TryBeginRefresh(10*time.Minute, later))
	idx.EndRefresh()
}

func TestLoadRestoresStamp(t *testing.T) {
	idx := New()
	old := time.Now().Add(-2 * time.Hour)

	n := idx.Load([]model.PoolRecord{rec(40, "saber-stable-swap", mintUSDC, mintUSDT, 0)}, old)
	require.Equal(t, 1, n)
	assert.WithinDuration(t, old, idx.LastIndexed(), time.Second)

	idx.Merge([]model.PoolRecord{rec(41, "raydium-v4", mintSOL, mintUSDC, 0)})
	assert.WithinDuration(t, time.Now(), idx.LastIndexed(), time.Minute)

	// A later load with an older stamp must not move time backwards.
	idx.Load(nil, old)
	assert.WithinDuration(t, time.Now(), idx.LastIndexed(), time.Minute)
}

func TestOldestTokens(t *testing.T) {
	idx := New()
	idx.Merge([]model.PoolRecord{
		rec(50, "raydium-v4", mintSOL, mintUSDC, 3*time.Hour),
		rec(51, "orca-whirlpool", mintMSOL, mintUSDC, time.Hour),
		rec(52, "meteora-dlmm", mintUSDT, mintMSOL, 2*time.Hour),
	})

	oldest := idx.OldestTokens(2)
	require.Len(t, oldest, 2)
	assert.ElementsMatch(t, []solana.PublicKey{mintSOL, mintUSDC}, oldest)

	assert.Len(t, idx.OldestTokens(0), 4, "zero cap returns every token")
}

func rec(n byte, protocol string, tokenA, tokenB solana.PublicKey, age time.Duration) model.PoolRecord {
	var addr solana.PublicKey
	addr[0] = n
	addr[31] = 0x7F
	return model.PoolRecord{
		Address:     addr,
		TokenA:      tokenA,
		TokenB:      tokenB,
		Protocol:    protocol,
		LastUpdated: time.Now().Add(-age),
	}
}
