package storage

import "poolscout/internal/model"

// Storage defines a sink for discovered pool records.
type Storage interface {
	PutPoolBatch(pools []model.PoolRecord) error
}
