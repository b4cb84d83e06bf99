package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Project is a saved project row. TeamConfig is the caller's JSON kept
// verbatim; the document bodies are nil when never supplied.
type Project struct {
	ID           string
	UserID       string
	ProjectName  string
	TeamConfig   json.RawMessage
	ConfigDigest string
	SprintPlan   *string
	RACIChart    *string
	ADRDocument  *string
	Status       string
	Seq          int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProjectUpdate lists the columns to overwrite. Nil fields are left
// untouched. UpdatedAt is always written.
type ProjectUpdate struct {
	ProjectName  *string
	TeamConfig   json.RawMessage
	ConfigDigest *string
	SprintPlan   *string
	RACIChart    *string
	ADRDocument  *string
	Status       *string
	UpdatedAt    time.Time
}

const projectColumns = `id, user_id, project_name, team_config, config_digest, sprint_plan,
	raci_chart, adr_document, status, seq, created_at, updated_at`

// nextSeq is evaluated inside the writing statement, so the counter and
// the row change commit together.
const nextSeq = `(SELECT COALESCE(MAX(seq), 0) + 1 FROM projects)`

// InsertProject stores p and returns it with Seq assigned.
// The owning user must exist (foreign key constraint).
func (s *Store) InsertProject(ctx context.Context, p Project) (Project, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, `+nextSeq+`, ?, ?)
		RETURNING `+projectColumns,
		p.ID,
		p.UserID,
		p.ProjectName,
		string(p.TeamConfig),
		p.ConfigDigest,
		p.SprintPlan,
		p.RACIChart,
		p.ADRDocument,
		p.Status,
		toUnix(p.CreatedAt),
		toUnix(p.UpdatedAt),
	)

	out, err := scanProject(row)
	if err != nil {
		return Project{}, fmt.Errorf("insert project: %w", err)
	}
	return out, nil
}

// ProjectByOwner returns the project only if it belongs to ownerID.
// Returns ErrNotFound otherwise.
func (s *Store) ProjectByOwner(ctx context.Context, id, ownerID string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = ? AND user_id = ?
	`, id, ownerID)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, fmt.Errorf("query project: %w", err)
	}
	return p, nil
}

// ProjectsByOwner returns every project owned by ownerID, most recently
// written first.
//
// Returns an empty slice (not nil) if the owner has no projects.
func (s *Store) ProjectsByOwner(ctx context.Context, ownerID string) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE user_id = ?
		ORDER BY updated_at DESC, seq DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// ProjectIDsByOwner returns the ids of ownerID's projects in list order.
func (s *Store) ProjectIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id
		FROM projects
		WHERE user_id = ?
		ORDER BY updated_at DESC, seq DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query project ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project ids: %w", err)
	}
	return ids, nil
}

// UpdateProject applies u to the project in one statement and returns the
// row as written. Returns ErrNotFound when no row matches both id and
// ownerID.
func (s *Store) UpdateProject(ctx context.Context, id, ownerID string, u ProjectUpdate) (Project, error) {
	sets := []string{"updated_at = ?", "seq = " + nextSeq}
	args := []any{toUnix(u.UpdatedAt)}

	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if u.ProjectName != nil {
		add("project_name", *u.ProjectName)
	}
	if u.TeamConfig != nil {
		add("team_config", string(u.TeamConfig))
	}
	if u.ConfigDigest != nil {
		add("config_digest", *u.ConfigDigest)
	}
	if u.SprintPlan != nil {
		add("sprint_plan", *u.SprintPlan)
	}
	if u.RACIChart != nil {
		add("raci_chart", *u.RACIChart)
	}
	if u.ADRDocument != nil {
		add("adr_document", *u.ADRDocument)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	args = append(args, id, ownerID)

	row := s.db.QueryRowContext(ctx, `
		UPDATE projects
		SET `+strings.Join(sets, ", ")+`
		WHERE id = ? AND user_id = ?
		RETURNING `+projectColumns,
		args...,
	)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// DeleteProject removes the project if it belongs to ownerID and reports
// whether a row was removed. A mismatch is not an error.
func (s *Store) DeleteProject(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM projects
		WHERE id = ? AND user_id = ?
	`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (Project, error) {
	var (
		p       Project
		config  string
		sprint  sql.NullString
		raci    sql.NullString
		adr     sql.NullString
		created int64
		updated int64
	)
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.ProjectName,
		&config,
		&p.ConfigDigest,
		&sprint,
		&raci,
		&adr,
		&p.Status,
		&p.Seq,
		&created,
		&updated,
	)
	if err != nil {
		return Project{}, err
	}

	p.TeamConfig = json.RawMessage(config)
	p.SprintPlan = fromNull(sprint)
	p.RACIChart = fromNull(raci)
	p.ADRDocument = fromNull(adr)
	p.CreatedAt = fromUnix(created)
	p.UpdatedAt = fromUnix(updated)
	return p, nil
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
