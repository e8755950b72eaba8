package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grayola/task-manager/internal/apperr"
	"github.com/grayola/task-manager/internal/projects/domain"
)

var projectCols = []string{"id", "client_id", "designer_id", "status", "points_cost", "title", "description", "files", "created_at", "updated_at"}

func setupRepo(t *testing.T) (*ProjectRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProjectRepository(db), mock
}

func newProject() *domain.Project {
	return &domain.Project{
		ID:          "11111111-1111-1111-1111-111111111111",
		ClientID:    "c1",
		Status:      domain.StatusPending,
		PointsCost:  10,
		Title:       "Logo",
		Description: "Nuevo logo",
	}
}

func TestCreateWithDebit(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("balance equal to cost commits and leaves zero", func(t *testing.T) {
		repo, mock := setupRepo(t)
		p := newProject()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT points_balance FROM profiles WHERE id = \$1 FOR UPDATE`).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows([]string{"points_balance"}).AddRow(10))
		mock.ExpectQuery(`INSERT INTO projects`).
			WithArgs(p.ID, "c1", "pending", 10, "Logo", "Nuevo logo").
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow(p.ID, "c1", nil, "pending", 10, "Logo", "Nuevo logo", "{}", now, now))
		mock.ExpectQuery(`UPDATE profiles`).
			WithArgs("c1", 10).
			WillReturnRows(sqlmock.NewRows([]string{"points_balance"}).AddRow(0))
		mock.ExpectCommit()

		remaining, err := repo.CreateWithDebit(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, 0, remaining)
		assert.Nil(t, p.DesignerID)
		assert.Equal(t, domain.StatusPending, p.Status)
		assert.Equal(t, []string{}, p.Files)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("balance one short rolls back without writes", func(t *testing.T) {
		repo, mock := setupRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT points_balance FROM profiles WHERE id = \$1 FOR UPDATE`).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows([]string{"points_balance"}).AddRow(9))
		mock.ExpectRollback()

		_, err := repo.CreateWithDebit(ctx, newProject())
		assert.Equal(t, apperr.KindInsufficientCredits, apperr.KindOf(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		repo, mock := setupRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT points_balance`).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows([]string{"points_balance"}).AddRow(100))
		mock.ExpectQuery(`INSERT INTO projects`).
			WillReturnError(errors.New("new row violates check constraint"))
		mock.ExpectRollback()

		_, err := repo.CreateWithDebit(ctx, newProject())
		assert.Equal(t, apperr.KindStore, apperr.KindOf(err))
		assert.Equal(t, "new row violates check constraint", apperr.MessageOf(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing profile", func(t *testing.T) {
		repo, mock := setupRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT points_balance`).WithArgs("c1").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.CreateWithDebit(ctx, newProject())
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetByID(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM projects WHERE id = \$1`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "c1", "d1", "in_progress", 10, "Logo", "Nuevo", `{p1/a.png,p1/b.pdf}`, now, now))

	p, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, p.DesignerID)
	assert.Equal(t, "d1", *p.DesignerID)
	assert.Equal(t, []string{"p1/a.png", "p1/b.pdf"}, p.Files)

	mock.ExpectQuery(`SELECT (.+) FROM projects WHERE id = \$1`).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "gone")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	now := time.Now()

	t.Run("by client newest first", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectQuery(`SELECT (.+) FROM projects WHERE client_id = \$1 ORDER BY created_at DESC`).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("p2", "c1", nil, "pending", 15, "B", "b", "{}", now, now).
				AddRow("p1", "c1", nil, "pending", 10, "A", "a", "{}", now.Add(-time.Hour), now))

		items, err := repo.List(context.Background(), domain.ListFilter{ClientID: "c1"})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "p2", items[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("by designer", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectQuery(`SELECT (.+) FROM projects WHERE designer_id = \$1 ORDER BY created_at DESC`).
			WithArgs("d1").
			WillReturnRows(sqlmock.NewRows(projectCols))

		items, err := repo.List(context.Background(), domain.ListFilter{DesignerID: "d1"})
		require.NoError(t, err)
		assert.Empty(t, items)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unfiltered", func(t *testing.T) {
		repo, mock := setupRepo(t)
		mock.ExpectQuery(`SELECT (.+) FROM projects ORDER BY created_at DESC`).
			WillReturnRows(sqlmock.NewRows(projectCols))

		_, err := repo.List(context.Background(), domain.ListFilter{})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAssign(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE projects\s+SET designer_id = \$2, status = 'in_progress'`).
		WithArgs("p1", "d2").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "c1", "d2", "in_progress", 10, "Logo", "Nuevo", "{}", now, now))

	p, err := repo.Assign(context.Background(), "p1", "d2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, p.Status)
	assert.Equal(t, "d2", *p.DesignerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()
	title := "Logo v2"
	cost := 12

	mock.ExpectQuery(`UPDATE projects\s+SET title = COALESCE\(\$2, title\)`).
		WithArgs("p1", "Logo v2", nil, 12, nil).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "c1", nil, "pending", 12, "Logo v2", "Nuevo", "{}", now, now))

	p, err := repo.Update(context.Background(), "p1", domain.Patch{Title: &title, PointsCost: &cost})
	require.NoError(t, err)
	assert.Equal(t, 12, p.PointsCost)
	assert.Equal(t, "Logo v2", p.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendFiles(t *testing.T) {
	repo, mock := setupRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SET files = array_cat\(files, \$2::text\[\]\)`).
		WithArgs("p1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "c1", nil, "pending", 10, "Logo", "Nuevo", `{p1/x.png,p1/y.png,p1/z.png}`, now, now))

	p, err := repo.AppendFiles(context.Background(), "p1", []string{"p1/x.png", "p1/y.png", "p1/z.png"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1/x.png", "p1/y.png", "p1/z.png"}, p.Files)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec(`DELETE FROM projects WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "p1"))

	mock.ExpectExec(`DELETE FROM projects WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Delete(context.Background(), "p1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, mock.ExpectationsWereMet())
}
