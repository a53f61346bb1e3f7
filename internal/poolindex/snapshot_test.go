package poolindex

import (
	"path/filepath"
	"testing"
	"time"

	"poolscout/internal/model"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pools.json")
	store := NewSnapshotStore(path, true)

	if _, found, err := store.Load(); err != nil || found {
		t.Fatalf("missing snapshot: found=%v err=%v", found, err)
	}

	pools := []model.PoolRecord{rec(1, "raydium-v4", mintSOL, mintUSDC, 0)}
	stamp := time.Now().Add(-30 * time.Minute).UTC().Truncate(time.Second)
	if err := store.Save(pools, stamp); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, found, err := store.Load()
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if len(snap.Pools) != 1 || snap.Pools[0].Address != pools[0].Address {
		t.Fatalf("pools mismatch: %+v", snap.Pools)
	}
	if snap.Pools[0].TokenA != mintSOL || snap.Pools[0].Protocol != "raydium-v4" {
		t.Fatalf("record fields lost: %+v", snap.Pools[0])
	}
	if !snap.LastIndexed.Equal(stamp) {
		t.Fatalf("stamp mismatch: %v vs %v", snap.LastIndexed, stamp)
	}
	if snap.SavedAt == "" {
		t.Fatalf("saved_at missing")
	}
}

func TestSnapshotDisabled(t *testing.T) {
	store := NewSnapshotStore("", false)
	if err := store.Save(nil, time.Time{}); err != nil {
		t.Fatalf("disabled save should no-op: %v", err)
	}
	if _, found, err := store.Load(); err != nil || found {
		t.Fatalf("disabled load should report absent: found=%v err=%v", found, err)
	}
}
