package models

import "time"

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// MutationResult is the uniform outcome of create, update, delete and workflow calls.
// Expected failures are reported with Success=false and a readable Message.
type MutationResult struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message,omitempty"`
	ID             int64   `json:"id,omitempty"`
	IDs            []int64 `json:"ids,omitempty"`
	SessionExpired bool    `json:"session_expired,omitempty"`
}

// DeleteValidation tells whether a record may be removed.
type DeleteValidation struct {
	CanDelete bool   `json:"can_delete"`
	Message   string `json:"message,omitempty"`
}

// ServerHealth is the outcome of a reachability check.
type ServerHealth struct {
	OK        bool          `json:"ok"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	CheckedAt time.Time     `json:"checked_at"`
}

// SyncMetricsSnapshot summarises runtime counters for diagnostics.
type SyncMetricsSnapshot struct {
	CacheHitRatio    float64   `json:"cache_hit_ratio"`
	CacheHits        uint64    `json:"cache_hits"`
	CacheMisses      uint64    `json:"cache_misses"`
	RequestsTotal    uint64    `json:"requests_total"`
	AverageRequestMs float64   `json:"average_request_ms"`
	RPCCallsTotal    uint64    `json:"rpc_calls_total"`
	AverageRPCMs     float64   `json:"average_rpc_ms"`
	OfflineLoads     uint64    `json:"offline_loads"`
	Goroutines       int       `json:"goroutines"`
	GeneratedAt      time.Time `json:"generated_at"`
}
