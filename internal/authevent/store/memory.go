package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"vigil/internal/authevent/models"
)

// InMemoryStore keeps authentication events in memory. Used in tests and for
// local development without a database.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []models.Event
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Add(ctx context.Context, event models.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Event
	for _, e := range s.events {
		if inWindow(e.CreatedAt, start, end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *InMemoryStore) GetCountsByType(ctx context.Context, start, end time.Time) (map[models.EventType]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.EventType]int)
	for _, e := range s.events {
		if inWindow(e.CreatedAt, start, end) {
			counts[e.Type]++
		}
	}
	return counts, nil
}

// GetFailedAttemptsByIP counts failed logins per hashed source address,
// returning only addresses with at least minCount failures in the window.
func (s *InMemoryStore) GetFailedAttemptsByIP(ctx context.Context, start, end time.Time, minCount int) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, e := range s.events {
		if e.Type != models.EventLogin || e.Success || e.IPHash == "" {
			continue
		}
		if inWindow(e.CreatedAt, start, end) {
			counts[e.IPHash]++
		}
	}
	for k, v := range counts {
		if v < minCount {
			delete(counts, k)
		}
	}
	return counts, nil
}

// GetRapidLoginAttempts counts login attempts per account regardless of
// outcome, returning only accounts with at least minCount attempts.
func (s *InMemoryStore) GetRapidLoginAttempts(ctx context.Context, start, end time.Time, minCount int) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, e := range s.events {
		if e.Type != models.EventLogin || e.Email == "" {
			continue
		}
		if inWindow(e.CreatedAt, start, end) {
			counts[e.Email]++
		}
	}
	for k, v := range counts {
		if v < minCount {
			delete(counts, k)
		}
	}
	return counts, nil
}

func (s *InMemoryStore) GetFiltered(ctx context.Context, filter models.Filter) ([]models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Event
	for _, e := range s.events {
		if !filter.Start.IsZero() && e.CreatedAt.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && e.CreatedAt.After(filter.End) {
			continue
		}
		if filter.Type != nil && e.Type != *filter.Type {
			continue
		}
		if filter.UserRole != nil && e.UserRole != *filter.UserRole {
			continue
		}
		if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
			continue
		}
		if filter.Success != nil && e.Success != *filter.Success {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit := filter.Limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
