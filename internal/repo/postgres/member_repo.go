package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teamops/assignment-service/internal/domain"
)

type MemberRepo struct {
	db *sql.DB
}

func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

func (r *MemberRepo) UpsertForTeam(ctx context.Context, teamName string, members []domain.TeamMember) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert members tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt := `
INSERT INTO team_members (id, name, team_name, committed_hours, max_hours, utilization, availability, quality_score, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    team_name = EXCLUDED.team_name,
    max_hours = EXCLUDED.max_hours,
    quality_score = EXCLUDED.quality_score,
    is_active = EXCLUDED.is_active,
    updated_at = now()
`
	for _, m := range members {
		if _, err := tx.ExecContext(ctx, stmt,
			m.ID,
			m.Name,
			teamName,
			m.CommittedHours,
			m.MaxHours,
			m.Utilization(),
			string(m.Availability()),
			m.QualityScore,
			m.IsActive,
		); err != nil {
			return fmt.Errorf("upsert member %s: %w", m.ID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM member_skills WHERE member_id = $1`,
			m.ID,
		); err != nil {
			return fmt.Errorf("clear skills for member %s: %w", m.ID, err)
		}
		for _, skill := range m.Skills {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO member_skills (member_id, skill) VALUES ($1, $2)
                 ON CONFLICT DO NOTHING`,
				m.ID, skill,
			); err != nil {
				return fmt.Errorf("insert skill %s for member %s: %w", skill, m.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert members tx: %w", err)
	}

	return nil
}

func (r *MemberRepo) GetByID(ctx context.Context, id string) (*domain.TeamMember, error) {
	var m domain.TeamMember
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, team_name, committed_hours, max_hours, quality_score, is_active, version
         FROM team_members
         WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Name, &m.TeamName, &m.CommittedHours, &m.MaxHours, &m.QualityScore, &m.IsActive, &m.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get member by id: %w", err)
	}

	skills, err := r.loadSkills(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.Skills = skills

	return &m, nil
}

func (r *MemberRepo) ListByTeam(ctx context.Context, teamName string) ([]domain.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, team_name, committed_hours, max_hours, quality_score, is_active, version
         FROM team_members
         WHERE team_name = $1
         ORDER BY id`,
		teamName,
	)
	if err != nil {
		return nil, fmt.Errorf("list members by team: %w", err)
	}
	defer rows.Close()

	members := make([]domain.TeamMember, 0)
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.TeamName, &m.CommittedHours, &m.MaxHours, &m.QualityScore, &m.IsActive, &m.Version); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members by team: %w", err)
	}

	for i := range members {
		skills, err := r.loadSkills(ctx, members[i].ID)
		if err != nil {
			return nil, err
		}
		members[i].Skills = skills
	}

	return members, nil
}

func (r *MemberRepo) ListAll(ctx context.Context) ([]domain.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, team_name, committed_hours, max_hours, quality_score, is_active, version
         FROM team_members
         WHERE is_active = TRUE
         ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := make([]domain.TeamMember, 0)
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.TeamName, &m.CommittedHours, &m.MaxHours, &m.QualityScore, &m.IsActive, &m.Version); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	for i := range members {
		skills, err := r.loadSkills(ctx, members[i].ID)
		if err != nil {
			return nil, err
		}
		members[i].Skills = skills
	}

	return members, nil
}

// UpdateCapacity writes the member's committed hours together with the
// cached utilization and availability, guarded by the version counter the
// snapshot was read at. RowsAffected 0 with an existing row means someone
// else committed in between.
func (r *MemberRepo) UpdateCapacity(ctx context.Context, m *domain.TeamMember, expectedVersion int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE team_members
         SET committed_hours = $2,
             utilization = $3,
             availability = $4,
             version = version + 1,
             updated_at = now()
         WHERE id = $1 AND version = $5`,
		m.ID,
		m.CommittedHours,
		m.Utilization(),
		string(m.Availability()),
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update member capacity: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update member capacity rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM team_members WHERE id = $1)`,
			m.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check member exists: %w", err)
		}
		if !exists {
			return sql.ErrNoRows
		}
		return domain.NewDomainError(domain.ErrorCodeCapacityConflict, "capacity record changed concurrently")
	}

	m.Version = expectedVersion + 1
	return nil
}

func (r *MemberRepo) loadSkills(ctx context.Context, memberID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT skill FROM member_skills WHERE member_id = $1 ORDER BY skill`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("load skills for member %s: %w", memberID, err)
	}
	defer rows.Close()

	skills := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skills: %w", err)
	}

	return skills, nil
}
