package models

import "time"

// MetricsSnapshot summarises process counters for the stats endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	Generations              uint64    `json:"generations"`
	LastGenerationScore      int       `json:"last_generation_score"`
	SubstitutionsApplied     uint64    `json:"substitutions_applied"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
