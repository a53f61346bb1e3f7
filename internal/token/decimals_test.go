package token

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	calls   int
	batches [][]solana.PublicKey
	data    map[solana.PublicKey][]byte
	err     error
}

func (f *fakeFetcher) MultipleAccountData(_ context.Context, keys []solana.PublicKey) ([][]byte, error) {
	f.calls++
	f.batches = append(f.batches, append([]solana.PublicKey(nil), keys...))
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = f.data[k]
	}
	return out, nil
}

func TestResolverResolvesAndCaches(t *testing.T) {
	fetcher := &fakeFetcher{data: map[solana.PublicKey][]byte{
		WSOL: mintAccount(9),
		USDC: mintAccount(6),
	}}
	r, err := NewResolver(fetcher, 16, zap.NewNop())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	got, err := r.Decimals(context.Background(), []solana.PublicKey{WSOL, USDC, WSOL})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got[WSOL] != 9 || got[USDC] != 6 || len(got) != 2 {
		t.Fatalf("decimals mismatch: %v", got)
	}
	if fetcher.calls != 1 {
		t.Fatalf("duplicate mints should share one fetch, got %d", fetcher.calls)
	}

	if _, err := r.Decimals(context.Background(), []solana.PublicKey{USDC}); err != nil {
		t.Fatalf("cached resolve: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("cached mint should not refetch, got %d calls", fetcher.calls)
	}
	if r.CacheLen() != 2 {
		t.Fatalf("cache should hold both mints, got %d", r.CacheLen())
	}
}

func TestResolverSkipsUnusableAccounts(t *testing.T) {
	short := solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R")
	fetcher := &fakeFetcher{data: map[solana.PublicKey][]byte{
		USDT:  mintAccount(6),
		short: make([]byte, 10),
	}}
	r, err := NewResolver(fetcher, 16, nil)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	got, err := r.Decimals(context.Background(), []solana.PublicKey{USDT, short, MSOL, {}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 1 || got[USDT] != 6 {
		t.Fatalf("only the valid mint should resolve: %v", got)
	}
}

func TestResolverSplitsLargeBatches(t *testing.T) {
	fetcher := &fakeFetcher{data: map[solana.PublicKey][]byte{}}
	mints := make([]solana.PublicKey, 250)
	for i := range mints {
		mints[i] = sequenceKey(i)
		fetcher.data[mints[i]] = mintAccount(uint8(i % 12))
	}
	r, err := NewResolver(fetcher, 512, zap.NewNop())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	got, err := r.Decimals(context.Background(), mints)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 250 {
		t.Fatalf("resolved %d of 250", len(got))
	}
	if fetcher.calls != 3 {
		t.Fatalf("250 mints should take 3 batches, got %d", fetcher.calls)
	}
	if len(fetcher.batches[0]) != 100 || len(fetcher.batches[2]) != 50 {
		t.Fatalf("batch sizes mismatch: %d/%d/%d",
			len(fetcher.batches[0]), len(fetcher.batches[1]), len(fetcher.batches[2]))
	}
}

func TestResolverKeepsCacheOnFetchError(t *testing.T) {
	fetcher := &fakeFetcher{data: map[solana.PublicKey][]byte{WSOL: mintAccount(9)}}
	r, err := NewResolver(fetcher, 16, zap.NewNop())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	if _, err := r.Decimals(context.Background(), []solana.PublicKey{WSOL}); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	fetcher.err = errors.New("rpc down")
	got, err := r.Decimals(context.Background(), []solana.PublicKey{WSOL, USDC})
	if err == nil {
		t.Fatalf("fetch failure should surface")
	}
	if got[WSOL] != 9 {
		t.Fatalf("cached decimals should still be returned: %v", got)
	}
}

func mintAccount(decimals uint8) []byte {
	data := make([]byte, 82)
	data[decimalsOffset] = decimals
	return data
}

func sequenceKey(i int) solana.PublicKey {
	var k solana.PublicKey
	k[0] = byte(i)
	k[1] = byte(i >> 8)
	k[31] = 1
	return k
}
