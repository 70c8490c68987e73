package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/teamops/assignment-service/internal/domain"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) RecordDecision(ctx context.Context, decision domain.AssignmentDecision) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO assignment_log (id, work_item_id, assignee_id, score, method)
         VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(),
		decision.WorkItemID,
		decision.AssigneeID,
		decision.Score,
		string(decision.Method),
	); err != nil {
		return fmt.Errorf("insert assignment_log: %w", err)
	}
	return nil
}

func (r *AuditRepo) CountAssignmentsByMember(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "assignee_id")
}

func (r *AuditRepo) CountAssignmentsByMethod(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, "method")
}

func (r *AuditRepo) countBy(ctx context.Context, column string) (map[string]int64, error) {
	// column is one of two fixed identifiers above, never user input.
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s, COUNT(*) AS cnt
         FROM assignment_log
         GROUP BY %s
         ORDER BY %s`, column, column, column),
	)
	if err != nil {
		return nil, fmt.Errorf("count assignments by %s: %w", column, err)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var (
			key string
			cnt int64
		)
		if err := rows.Scan(&key, &cnt); err != nil {
			return nil, fmt.Errorf("scan assignments by %s: %w", column, err)
		}
		result[key] = cnt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments by %s: %w", column, err)
	}

	return result, nil
}
