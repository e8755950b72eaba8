package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/grayola/task-manager/internal/apperr"
	"github.com/grayola/task-manager/internal/projects/domain"
	"github.com/grayola/task-manager/internal/storage/postgres"
)

const projectColumns = `id, client_id, designer_id, status, points_cost, title, description, files, created_at, updated_at`

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p        domain.Project
		designer sql.NullString
		status   string
		files    []string
	)
	err := row.Scan(&p.ID, &p.ClientID, &designer, &status, &p.PointsCost,
		&p.Title, &p.Description, pq.Array(&files), &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if designer.Valid {
		d := designer.String
		p.DesignerID = &d
	}
	p.Status = domain.Status(status)
	if files == nil {
		files = []string{}
	}
	p.Files = files
	return &p, nil
}

// scanOne maps a missing row to not found and classifies the rest.
func scanOne(row rowScanner) (*domain.Project, error) {
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("project not found")
	}
	if err != nil {
		return nil, postgres.Classify(err)
	}
	return p, nil
}

// CreateWithDebit inserts p and debits its cost from the client's balance in
// one transaction. The profile row stays locked until commit so concurrent
// creations cannot both spend the same credits. It returns the remaining
// balance.
func (r *ProjectRepository) CreateWithDebit(ctx context.Context, p *domain.Project) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, postgres.Classify(err)
	}
	defer tx.Rollback() //nolint:errcheck

	var balance int
	err = tx.QueryRowContext(ctx,
		`SELECT points_balance FROM profiles WHERE id = $1 FOR UPDATE`, p.ClientID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound("profile not found")
	}
	if err != nil {
		return 0, postgres.Classify(err)
	}
	if balance < p.PointsCost {
		return balance, apperr.InsufficientCredits(balance, p.PointsCost)
	}

	const insert = `
INSERT INTO projects (id, client_id, status, points_cost, title, description)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + projectColumns

	created, err := scanProject(tx.QueryRowContext(ctx, insert,
		p.ID, p.ClientID, string(p.Status), p.PointsCost, p.Title, p.Description))
	if err != nil {
		return 0, postgres.Classify(err)
	}

	var remaining int
	err = tx.QueryRowContext(ctx, `
UPDATE profiles
SET points_balance = points_balance - $2, updated_at = now()
WHERE id = $1
RETURNING points_balance`, p.ClientID, p.PointsCost).Scan(&remaining)
	if err != nil {
		return 0, postgres.Classify(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, postgres.Classify(err)
	}
	*p = *created
	return remaining, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

// List returns projects matching f, newest first.
func (r *ProjectRepository) List(ctx context.Context, f domain.ListFilter) ([]domain.Project, error) {
	var (
		where []string
		args  []any
	)
	if f.ClientID != "" {
		args = append(args, f.ClientID)
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if f.DesignerID != "" {
		args = append(args, f.DesignerID)
		where = append(where, fmt.Sprintf("designer_id = $%d", len(args)))
	}

	q := `SELECT ` + projectColumns + ` FROM projects`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, postgres.Classify(err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, postgres.Classify(err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Classify(err)
	}
	return out, nil
}

// Assign sets the designer and moves the project to in_progress.
func (r *ProjectRepository) Assign(ctx context.Context, id, designerID string) (*domain.Project, error) {
	const q = `
UPDATE projects
SET designer_id = $2, status = 'in_progress', updated_at = now()
WHERE id = $1
RETURNING ` + projectColumns
	return scanOne(r.db.QueryRowContext(ctx, q, id, designerID))
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Project, error) {
	const q = `
UPDATE projects
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + projectColumns
	return scanOne(r.db.QueryRowContext(ctx, q, id, string(status)))
}

// Update applies the non-nil fields of patch.
func (r *ProjectRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Project, error) {
	var (
		title, description, status sql.NullString
		cost                       sql.NullInt64
	)
	if patch.Title != nil {
		title = sql.NullString{String: *patch.Title, Valid: true}
	}
	if patch.Description != nil {
		description = sql.NullString{String: *patch.Description, Valid: true}
	}
	if patch.PointsCost != nil {
		cost = sql.NullInt64{Int64: int64(*patch.PointsCost), Valid: true}
	}
	if patch.Status != nil {
		status = sql.NullString{String: string(*patch.Status), Valid: true}
	}

	const q = `
UPDATE projects
SET title = COALESCE($2, title),
    description = COALESCE($3, description),
    points_cost = COALESCE($4, points_cost),
    status = COALESCE($5, status),
    updated_at = now()
WHERE id = $1
RETURNING ` + projectColumns
	return scanOne(r.db.QueryRowContext(ctx, q, id, title, description, cost, status))
}

// AppendFiles appends paths to the project's files, keeping their order.
func (r *ProjectRepository) AppendFiles(ctx context.Context, id string, paths []string) (*domain.Project, error) {
	const q = `
UPDATE projects
SET files = array_cat(files, $2::text[]), updated_at = now()
WHERE id = $1
RETURNING ` + projectColumns
	return scanOne(r.db.QueryRowContext(ctx, q, id, pq.Array(paths)))
}

// Delete removes the project row. Stored objects are left in place.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return postgres.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return postgres.Classify(err)
	}
	if n == 0 {
		return apperr.NotFound("project not found")
	}
	return nil
}
