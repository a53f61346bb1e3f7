package poolindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"poolscout/internal/model"
)

// Snapshot is the on-disk image of the index, written after discovery runs
// and read back for warm starts.
type Snapshot struct {
	SavedAt     string             `json:"saved_at"`
	LastIndexed time.Time          `json:"last_indexed"`
	Pools       []model.PoolRecord `json:"pools"`
}

// SnapshotStore persists index snapshots to disk.
type SnapshotStore struct {
	path    string
	enabled bool
}

func NewSnapshotStore(path string, enabled bool) *SnapshotStore {
	return &SnapshotStore{path: path, enabled: enabled}
}

func (s *SnapshotStore) Load() (Snapshot, bool, error) {
	if !s.enabled {
		return Snapshot{}, false, nil
	}

	stat, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("stat snapshot: %w", err)
	}
	if stat.IsDir() {
		return Snapshot{}, false, fmt.Errorf("snapshot path is a directory")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("parse snapshot: %w", err)
	}

	return snap, true, nil
}

func (s *SnapshotStore) Save(pools []model.PoolRecord, lastIndexed time.Time) error {
	if !s.enabled {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	snap := Snapshot{
		SavedAt:     time.Now().UTC().Format(time.RFC3339Nano),
		LastIndexed: lastIndexed,
		Pools:       pools,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}

	return nil
}
