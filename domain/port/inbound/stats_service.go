package inbound

import (
	"context"

	"github.com/bantuankita/bantuankita/domain/model"
)

// StatsSnapshot is one collection of moderation and runtime counters
type StatsSnapshot struct {
	Timestamp   int64            `json:"timestamp"`
	Offers      model.OfferStats `json:"offers"`
	Removals    RemovalStats     `json:"removals"`
	MemoryUsage int64            `json:"memoryUsage"` // bytes
	Goroutines  int              `json:"goroutines"`
	StoreOnline bool             `json:"storeOnline"`
	Events      map[string]int   `json:"events"`
	Recent      []model.Event    `json:"recent,omitempty"`
}

// RemovalStats counts removal requests per status
type RemovalStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// StatsService collects moderation statistics for the admin dashboard
type StatsService interface {
	GetCurrentStats(ctx context.Context) (*StatsSnapshot, error)
	GetStatsHistory(ctx context.Context, limit int) ([]*StatsSnapshot, error)

	// RecordEvent counts a moderation event and keeps it in the recent list
	RecordEvent(event model.Event)

	Cleanup()
}
