package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/teamops/assignment-service/internal/domain"
)

type WorkItemRepo struct {
	db *sql.DB
}

func NewWorkItemRepo(db *sql.DB) *WorkItemRepo {
	return &WorkItemRepo{db: db}
}

func (r *WorkItemRepo) Create(ctx context.Context, item *domain.WorkItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create work item tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var createdAt *time.Time
	if item.CreatedAt != 0 {
		t := time.Unix(item.CreatedAt, 0)
		createdAt = &t
	}

	var assignee *string
	if item.AssigneeID != "" {
		assignee = &item.AssigneeID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO work_items (id, title, team_name, kind, estimated_hours, status, assignee_id, priority, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()))`,
		item.ID,
		item.Title,
		item.TeamName,
		string(item.Kind),
		item.EstimatedHours,
		string(item.Status),
		assignee,
		string(item.Priority),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert work_item: %w", err)
	}

	for _, skill := range item.RequiredSkills {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO work_item_skills (item_id, skill) VALUES ($1, $2)`,
			item.ID, skill,
		); err != nil {
			return fmt.Errorf("insert work_item_skill %s: %w", skill, err)
		}
	}

	for _, depID := range item.DependsOn {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO work_item_dependencies (item_id, depends_on_id) VALUES ($1, $2)`,
			item.ID, depID,
		); err != nil {
			return fmt.Errorf("insert work_item_dependency %s: %w", depID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create work item tx: %w", err)
	}

	return nil
}

func (r *WorkItemRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM work_items WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check work item exists: %w", err)
	}
	return exists, nil
}

func (r *WorkItemRepo) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, team_name, kind, estimated_hours, status, assignee_id, priority, created_at, completed_at
         FROM work_items
         WHERE id = $1`,
		id,
	)

	item, err := scanWorkItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get work item by id: %w", err)
	}

	if err := r.loadItemSets(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// UpdateAssignment sets both the status and the assignee in one statement so
// an assignment is visible atomically.
func (r *WorkItemRepo) UpdateAssignment(ctx context.Context, id string, status domain.WorkItemStatus, assigneeID string) error {
	var assignee *string
	if assigneeID != "" {
		assignee = &assigneeID
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE work_items
         SET status = $2, assignee_id = $3
         WHERE id = $1`,
		id, string(status), assignee,
	)
	if err != nil {
		return fmt.Errorf("update work item assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update work item assignment rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *WorkItemRepo) UpdateStatus(ctx context.Context, id string, status domain.WorkItemStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE work_items SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update work item status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update work item status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetCompleted marks the item completed only if it was not completed yet and
// reports whether this call made the transition. The cascade uses that to
// release capacity exactly once.
func (r *WorkItemRepo) SetCompleted(ctx context.Context, id string, completedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE work_items
         SET status = 'completed', completed_at = $2
         WHERE id = $1 AND status <> 'completed'`,
		id, completedAt,
	)
	if err != nil {
		return false, fmt.Errorf("set work item completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set work item completed rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListBlockedByDependency returns blocked items that list the given item as
// a dependency.
func (r *WorkItemRepo) ListBlockedByDependency(ctx context.Context, dependencyID string) ([]domain.WorkItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT w.id, w.title, w.team_name, w.kind, w.estimated_hours, w.status, w.assignee_id, w.priority, w.created_at, w.completed_at
         FROM work_items w
         JOIN work_item_dependencies d ON d.item_id = w.id
         WHERE d.depends_on_id = $1 AND w.status = 'blocked'
         ORDER BY w.id`,
		dependencyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list blocked by dependency: %w", err)
	}
	defer rows.Close()

	items, err := collectWorkItems(rows)
	if err != nil {
		return nil, fmt.Errorf("collect blocked by dependency: %w", err)
	}

	for i := range items {
		if err := r.loadItemSets(ctx, &items[i]); err != nil {
			return nil, err
		}
	}

	return items, nil
}

func (r *WorkItemRepo) CountIncompleteDependencies(ctx context.Context, itemID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
         FROM work_item_dependencies d
         JOIN work_items w ON w.id = d.depends_on_id
         WHERE d.item_id = $1 AND w.status <> 'completed'`,
		itemID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count incomplete dependencies: %w", err)
	}
	return count, nil
}

// ListPendingByAssignee returns the member's assigned-but-not-started items
// below critical priority, oldest first. Rebalancing only ever touches these.
func (r *WorkItemRepo) ListPendingByAssignee(ctx context.Context, assigneeID string) ([]domain.WorkItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, team_name, kind, estimated_hours, status, assignee_id, priority, created_at, completed_at
         FROM work_items
         WHERE assignee_id = $1 AND status = 'assigned' AND priority <> 'critical'
         ORDER BY created_at, id`,
		assigneeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending by assignee: %w", err)
	}
	defer rows.Close()

	items, err := collectWorkItems(rows)
	if err != nil {
		return nil, fmt.Errorf("collect pending by assignee: %w", err)
	}

	for i := range items {
		if err := r.loadItemSets(ctx, &items[i]); err != nil {
			return nil, err
		}
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkItem(row rowScanner) (*domain.WorkItem, error) {
	var (
		item         domain.WorkItem
		kindStr      string
		statusStr    string
		priorityStr  string
		assigneeRaw  sql.NullString
		createdRaw   sql.NullTime
		completedRaw sql.NullTime
	)

	if err := row.Scan(
		&item.ID,
		&item.Title,
		&item.TeamName,
		&kindStr,
		&item.EstimatedHours,
		&statusStr,
		&assigneeRaw,
		&priorityStr,
		&createdRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	item.Kind = domain.WorkItemKind(kindStr)
	item.Status = domain.WorkItemStatus(statusStr)
	item.Priority = domain.Priority(priorityStr)
	if assigneeRaw.Valid {
		item.AssigneeID = assigneeRaw.String
	}
	if createdRaw.Valid {
		item.CreatedAt = createdRaw.Time.Unix()
	}
	if completedRaw.Valid {
		item.CompletedAt = completedRaw.Time.Unix()
	}

	return &item, nil
}

func collectWorkItems(rows *sql.Rows) ([]domain.WorkItem, error) {
	items := make([]domain.WorkItem, 0)
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work items: %w", err)
	}
	return items, nil
}

func (r *WorkItemRepo) loadItemSets(ctx context.Context, item *domain.WorkItem) error {
	skills, err := r.loadStrings(ctx,
		`SELECT skill FROM work_item_skills WHERE item_id = $1 ORDER BY skill`,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("load skills for work item %s: %w", item.ID, err)
	}
	item.RequiredSkills = skills

	deps, err := r.loadStrings(ctx,
		`SELECT depends_on_id FROM work_item_dependencies WHERE item_id = $1 ORDER BY depends_on_id`,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("load dependencies for work item %s: %w", item.ID, err)
	}
	item.DependsOn = deps

	return nil
}

func (r *WorkItemRepo) loadStrings(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
