package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"taskflow/internal/models"
	"taskflow/internal/query"
)

// These tests pin the exact SQL shape the repository sends to Postgres. The
// property under test: the creator-or-assignee clause is present in both the
// count and the page fetch, AND'ed with every user-supplied filter.

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	return db, mock
}

func TestListSQLKeepsVisibilityClause(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	status := models.TaskStatusPending
	d := query.TaskQueryDescriptor{
		Status:    &status,
		Page:      1,
		Limit:     20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
	pred := query.And(query.Visibility("u1", query.OpRead), d.Predicate())

	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks" WHERE \(\(creator_id = \$1 OR assignee_id = \$2\) AND status = \$3\)`).
		WithArgs("u1", "u1", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE \(\(creator_id = \$1 OR assignee_id = \$2\) AND status = \$3\) ORDER BY created_at DESC LIMIT \$4`).
		WithArgs("u1", "u1", "PENDING", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tasks, total, err := repo.List(pred, d)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Zero(t, total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchSQLKeepsVisibilityClause(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	pred := query.And(query.Visibility("u1", query.OpRead), query.SearchClause("Report"))

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE \(\(creator_id = \$1 OR assignee_id = \$2\) AND \(LOWER\(title\) LIKE \$3 ESCAPE '\\' OR LOWER\(description\) LIKE \$4 ESCAPE '\\'\)\) ORDER BY updated_at DESC LIMIT \$5`).
		WithArgs("u1", "u1", "%report%", "%report%", 50).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tasks, err := repo.Search(pred, 50)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSQLIsCreatorScoped(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE id = \$1 AND creator_id = \$2`).
		WithArgs("t1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete("t1", query.Visibility("u1", query.OpDelete))
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
