package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vigil/internal/authevent/models"
)

// PostgresStore implements the authentication-event port using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Add(ctx context.Context, event models.Event) error {
	query := `
		INSERT INTO authentication_events (
			id, event_type, email, success, user_id, user_role,
			ip_hash, user_agent, device, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Type),
		event.Email,
		event.Success,
		event.UserID,
		nullable(event.UserRole),
		nullable(event.IPHash),
		nullable(event.UserAgent),
		nullable(event.Device),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert authentication event: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	query := `
		SELECT id, event_type, email, success, user_id, user_role,
			   ip_hash, user_agent, device, created_at
		FROM authentication_events
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query authentication events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *PostgresStore) GetCountsByType(ctx context.Context, start, end time.Time) (map[models.EventType]int, error) {
	query := `
		SELECT event_type, COUNT(*)
		FROM authentication_events
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY event_type
	`

	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query event counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.EventType]int)
	for rows.Next() {
		var (
			eventType string
			count     int
		)
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		counts[models.EventType(eventType)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event counts: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) GetFailedAttemptsByIP(ctx context.Context, start, end time.Time, minCount int) (map[string]int, error) {
	query := `
		SELECT ip_hash, COUNT(*)
		FROM authentication_events
		WHERE event_type = 'login' AND success = FALSE AND ip_hash IS NOT NULL
		  AND created_at >= $1 AND created_at <= $2
		GROUP BY ip_hash
		HAVING COUNT(*) >= $3
	`
	return s.countByKey(ctx, query, start, end, minCount)
}

func (s *PostgresStore) GetRapidLoginAttempts(ctx context.Context, start, end time.Time, minCount int) (map[string]int, error) {
	query := `
		SELECT email, COUNT(*)
		FROM authentication_events
		WHERE event_type = 'login' AND email <> ''
		  AND created_at >= $1 AND created_at <= $2
		GROUP BY email
		HAVING COUNT(*) >= $3
	`
	return s.countByKey(ctx, query, start, end, minCount)
}

func (s *PostgresStore) countByKey(ctx context.Context, query string, start, end time.Time, minCount int) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query, start, end, minCount)
	if err != nil {
		return nil, fmt.Errorf("query aggregate counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scan aggregate count: %w", err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregate counts: %w", err)
	}
	return counts, nil
}

func (s *PostgresStore) GetFiltered(ctx context.Context, filter models.Filter) ([]models.Event, error) {
	query := `
		SELECT id, event_type, email, success, user_id, user_role,
			   ip_hash, user_agent, device, created_at
		FROM authentication_events
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		  AND ($3::text IS NULL OR event_type = $3)
		  AND ($4::text IS NULL OR user_role = $4)
		  AND ($5::uuid IS NULL OR user_id = $5)
		  AND ($6::boolean IS NULL OR success = $6)
		ORDER BY created_at DESC
		LIMIT $7
	`

	var start, end *time.Time
	if !filter.Start.IsZero() {
		start = &filter.Start
	}
	if !filter.End.IsZero() {
		end = &filter.End
	}
	var eventType *string
	if filter.Type != nil {
		t := string(*filter.Type)
		eventType = &t
	}

	rows, err := s.db.QueryContext(ctx, query,
		start, end, eventType, filter.UserRole, filter.UserID, filter.Success, filter.Limit(),
	)
	if err != nil {
		return nil, fmt.Errorf("query filtered events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]models.Event, error) {
	var out []models.Event
	for rows.Next() {
		var (
			e         models.Event
			eventType string
			userID    *uuid.UUID
			userRole  sql.NullString
			ipHash    sql.NullString
			userAgent sql.NullString
			device    sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &eventType, &e.Email, &e.Success, &userID,
			&userRole, &ipHash, &userAgent, &device, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan authentication event: %w", err)
		}
		e.Type = models.EventType(eventType)
		e.UserID = userID
		e.UserRole = userRole.String
		e.IPHash = ipHash.String
		e.UserAgent = userAgent.String
		e.Device = device.String
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate authentication events: %w", err)
	}
	return out, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
