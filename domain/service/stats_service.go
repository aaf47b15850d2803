package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/inbound"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

const (
	maxStatsHistory  = 60 // one hour at the default interval
	maxRecentEvents  = 50
	defaultCollectAt = time.Minute
)

// StatsServiceImpl periodically snapshots moderation counters and keeps
// the most recent moderation events.
type StatsServiceImpl struct {
	offers   outbound.OfferRepository
	removals outbound.RemovalRequestRepository
	store    outbound.DocumentStore
	logger   outbound.Logger

	history     []*inbound.StatsSnapshot
	eventCounts map[string]int
	recent      []model.Event

	collectInterval time.Duration
	stopCollect     chan struct{}
	stopOnce        sync.Once
	mu              sync.RWMutex
}

func NewStatsService(
	rootCtx context.Context,
	offers outbound.OfferRepository,
	removals outbound.RemovalRequestRepository,
	store outbound.DocumentStore,
	logger outbound.Logger,
	collectInterval time.Duration,
) inbound.StatsService {
	if collectInterval <= 0 {
		collectInterval = defaultCollectAt
	}

	svc := &StatsServiceImpl{
		offers:          offers,
		removals:        removals,
		store:           store,
		logger:          logger,
		history:         make([]*inbound.StatsSnapshot, 0, maxStatsHistory),
		eventCounts:     make(map[string]int),
		collectInterval: collectInterval,
		stopCollect:     make(chan struct{}),
	}

	go svc.startCollection(rootCtx)

	return svc
}

func (s *StatsServiceImpl) startCollection(ctx context.Context) {
	ticker := time.NewTicker(s.collectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.collect(ctx)
		case <-s.stopCollect:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *StatsServiceImpl) collect(ctx context.Context) *inbound.StatsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snap := &inbound.StatsSnapshot{
		Timestamp:   time.Now().Unix(),
		MemoryUsage: int64(memStats.Alloc),
		Goroutines:  runtime.NumGoroutine(),
		StoreOnline: s.store.Ping(ctx) == nil,
	}

	if stats, err := s.offers.Stats(ctx); err == nil {
		snap.Offers = *stats
	} else {
		s.logger.Debug("Offer stats unavailable", "error", err)
	}

	if requests, err := s.removals.List(ctx); err == nil {
		for _, r := range requests {
			snap.Removals.Total++
			switch r.Status {
			case model.RemovalRequestPending:
				snap.Removals.Pending++
			case model.RemovalRequestApproved:
				snap.Removals.Approved++
			case model.RemovalRequestRejected:
				snap.Removals.Rejected++
			}
		}
	} else {
		s.logger.Debug("Removal stats unavailable", "error", err)
	}

	s.mu.Lock()
	snap.Events = make(map[string]int, len(s.eventCounts))
	for k, v := range s.eventCounts {
		snap.Events[k] = v
	}
	s.history = append(s.history, snap)
	if len(s.history) > maxStatsHistory {
		s.history = s.history[len(s.history)-maxStatsHistory:]
	}
	s.mu.Unlock()

	return snap
}

// GetCurrentStats collects a fresh snapshot and attaches the recent events
func (s *StatsServiceImpl) GetCurrentStats(ctx context.Context) (*inbound.StatsSnapshot, error) {
	snap := s.collect(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := *snap
	current.Recent = make([]model.Event, len(s.recent))
	copy(current.Recent, s.recent)
	return &current, nil
}

func (s *StatsServiceImpl) GetStatsHistory(ctx context.Context, limit int) ([]*inbound.StatsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*inbound.StatsSnapshot, len(s.history))
	copy(result, s.history)

	if limit > 0 && limit < len(result) {
		result = result[len(result)-limit:]
	}
	return result, nil
}

func (s *StatsServiceImpl) RecordEvent(event model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eventCounts[string(event.Type)]++

	// newest first
	s.recent = append([]model.Event{event}, s.recent...)
	if len(s.recent) > maxRecentEvents {
		s.recent = s.recent[:maxRecentEvents]
	}
}

func (s *StatsServiceImpl) Cleanup() {
	s.stopOnce.Do(func() {
		close(s.stopCollect)
	})

	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}
