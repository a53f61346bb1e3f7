package model

import "time"

// IndexStats is a point-in-time summary of the pool index.
type IndexStats struct {
	TotalPools      int            `json:"total_pools"`
	PoolsByProtocol map[string]int `json:"pools_by_protocol"`
	LastIndexed     time.Time      `json:"last_indexed"`
}
