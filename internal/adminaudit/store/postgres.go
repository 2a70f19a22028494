package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vigil/internal/adminaudit/models"
)

// PostgresStore implements the admin-audit side of the persistence port
// using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const auditColumns = `
	id, admin_user_id, action, entity_type, entity_id,
	success, details, failure_reason, ip_address, created_at
`

func (s *PostgresStore) Add(ctx context.Context, log models.AuditLog) (*models.AuditLog, error) {
	query := `
		INSERT INTO admin_audit_logs (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		log.ID,
		log.AdminUserID,
		log.Action,
		log.EntityType,
		log.EntityID,
		log.Success,
		nullable(log.Details),
		nullable(log.FailureReason),
		nullable(log.IPAddress),
		log.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert admin audit log: %w", err)
	}
	stored := log
	return &stored, nil
}

func (s *PostgresStore) GetFiltered(ctx context.Context, filter models.Filter) ([]models.AuditLog, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM admin_audit_logs
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		  AND ($3::text IS NULL OR admin_user_id = $3)
		  AND ($4::text IS NULL OR entity_type = $4)
		  AND ($5::text IS NULL OR action = $5)
		  AND ($6::text IS NULL OR entity_id = $6)
		  AND ($7::boolean IS NULL OR success = $7)
		ORDER BY created_at DESC
		LIMIT $8
	`

	rows, err := s.db.QueryContext(ctx, query,
		filter.Start, filter.End, filter.AdminUserID, filter.EntityType,
		filter.Action, filter.EntityID, filter.Success, filter.Limit(),
	)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

func (s *PostgresStore) GetByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM admin_audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("query entity audit logs: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM admin_audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old audit logs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted audit logs: %w", err)
	}
	return int(affected), nil
}

func (s *PostgresStore) GetForArchival(ctx context.Context, cutoff time.Time, batchSize int) ([]models.AuditLog, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM admin_audit_logs
		WHERE created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, cutoff, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query archival audit logs: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

func scanLogs(rows *sql.Rows) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for rows.Next() {
		var (
			l             models.AuditLog
			details       sql.NullString
			failureReason sql.NullString
			ipAddress     sql.NullString
		)
		if err := rows.Scan(
			&l.ID, &l.AdminUserID, &l.Action, &l.EntityType, &l.EntityID,
			&l.Success, &details, &failureReason, &ipAddress, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		l.Details = details.String
		l.FailureReason = failureReason.String
		l.IPAddress = ipAddress.String
		l.CreatedAt = l.CreatedAt.UTC()
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return out, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
