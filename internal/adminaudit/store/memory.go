package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"vigil/internal/adminaudit/models"
)

// InMemoryStore keeps admin audit logs in memory. Used in tests and for local
// development without a database.
type InMemoryStore struct {
	mu   sync.RWMutex
	logs []models.AuditLog
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Add(ctx context.Context, log models.AuditLog) (*models.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	stored := log
	return &stored, nil
}

func (s *InMemoryStore) GetFiltered(ctx context.Context, filter models.Filter) ([]models.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AuditLog
	for _, l := range s.logs {
		if filter.Start != nil && l.CreatedAt.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && l.CreatedAt.After(*filter.End) {
			continue
		}
		if filter.AdminUserID != nil && l.AdminUserID != *filter.AdminUserID {
			continue
		}
		if filter.EntityType != nil && l.EntityType != *filter.EntityType {
			continue
		}
		if filter.Action != nil && l.Action != *filter.Action {
			continue
		}
		if filter.EntityID != nil && l.EntityID != *filter.EntityID {
			continue
		}
		if filter.Success != nil && l.Success != *filter.Success {
			continue
		}
		out = append(out, l)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit := filter.Limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetByEntity returns the full history for one resource, oldest first.
func (s *InMemoryStore) GetByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AuditLog
	for _, l := range s.logs {
		if l.EntityType == entityType && l.EntityID == entityID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.logs[:0]
	deleted := 0
	for _, l := range s.logs {
		if l.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	s.logs = kept
	return deleted, nil
}

func (s *InMemoryStore) GetForArchival(ctx context.Context, cutoff time.Time, batchSize int) ([]models.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AuditLog
	for _, l := range s.logs {
		if l.CreatedAt.Before(cutoff) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if batchSize > 0 && len(out) > batchSize {
		out = out[:batchSize]
	}
	return out, nil
}
