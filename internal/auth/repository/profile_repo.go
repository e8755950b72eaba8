package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/grayola/task-manager/internal/apperr"
	"github.com/grayola/task-manager/internal/auth/domain"
	"github.com/grayola/task-manager/internal/storage/postgres"
)

const profileColumns = `id, email, role, points_balance, created_at, updated_at`

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	var role string
	if err := row.Scan(&p.ID, &p.Email, &role, &p.PointsBalance, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Role = domain.Role(role)
	return &p, nil
}

// GetByID retrieves a profile by the identity's user id.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("profile not found")
	}
	if err != nil {
		return nil, postgres.Classify(err)
	}
	return p, nil
}

// Create inserts a new profile.
func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, email, role, points_balance)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, p.ID, p.Email, string(p.Role), p.PointsBalance).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return postgres.Classify(err)
	}
	return nil
}

// ListByRole returns every profile holding role, oldest first.
func (r *ProfileRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE role = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, postgres.Classify(err)
	}
	defer rows.Close()

	out := make([]domain.Profile, 0, 8)
	for rows.Next() {
		p, err := scanProfile(rows)
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

// UpdateRole sets the role of the profile.
func (r *ProfileRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.Profile, error) {
	query := `
		UPDATE profiles
		SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id, string(role)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("profile not found")
	}
	if err != nil {
		return nil, postgres.Classify(err)
	}
	return p, nil
}
