package repository

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 5

	return NewRepository(cfg, db), mock, func() { db.Close() }
}

func TestLoadSnapshot(t *testing.T) {
	repo, mock, cleanup := newMockRepository(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM workshops")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "数论入门").AddRow(2, "图论进阶"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT workshop_id, lecturer_id FROM workshop_lecturers")).
		WillReturnRows(sqlmock.NewRows([]string{"workshop_id", "lecturer_id"}).AddRow(1, 10).AddRow(1, 11).AddRow(99, 10))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT workshop_id, block FROM workshop_disallowed_blocks")).
		WillReturnRows(sqlmock.NewRows([]string{"workshop_id", "block"}).AddRow(2, 0).AddRow(2, 5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(10, "王伟").AddRow(11, "李静").AddRow(12, "张敏"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, workshop_id FROM workshop_participants")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "workshop_id"}).AddRow(12, 1).AddRow(12, 2))
	mock.ExpectCommit()

	s, err := repo.LoadSnapshot()
	require.NoError(t, err)

	require.Len(t, s.Workshops, 2)
	assert.Equal(t, []int64{10, 11}, s.Workshops[0].Lecturers)
	assert.Empty(t, s.Workshops[0].DisallowedBlocks)
	assert.Empty(t, s.Workshops[1].Lecturers)
	assert.Equal(t, []int{0, 5}, s.Workshops[1].DisallowedBlocks)
	assert.Len(t, s.Users, 3)
	assert.Equal(t, []domain.Participation{{UserID: 12, WorkshopID: 1}, {UserID: 12, WorkshopID: 2}}, s.Participation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSnapshot_QueryError(t *testing.T) {
	repo, mock, cleanup := newMockRepository(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name FROM workshops").WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	_, err := repo.LoadSnapshot()
	assert.ErrorContains(t, err, "relation does not exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePlanResult(t *testing.T) {
	repo, mock, cleanup := newMockRepository(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET block = $1")).WithArgs(0, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET block = $1")).WithArgs(0, 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET block = $1")).WithArgs(5, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO plan_results").
		WithArgs(int64(-1000), 30, []byte("[[1,3],[],[],[],[],[2]]")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))
	mock.ExpectCommit()

	result := &domain.PlanResult{Score: -1000, Generations: 30, Blocks: domain.BlockTable{{1, 3}, {}, {}, {}, {}, {2}}}
	require.NoError(t, repo.SavePlanResult(result))
	assert.Equal(t, int64(7), result.ID)
	assert.Equal(t, now, result.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePlanResult_UnknownWorkshop(t *testing.T) {
	repo, mock, cleanup := newMockRepository(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE workshops").WithArgs(0, 42).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SavePlanResult(&domain.PlanResult{Blocks: domain.BlockTable{{42}, {}, {}, {}, {}, {}}})
	assert.ErrorIs(t, err, ErrWorkshopNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLatestPlanResult(t *testing.T) {
	repo, mock, cleanup := newMockRepository(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT id, score, generations, blocks, created_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "score", "generations", "blocks", "created_at"}).
			AddRow(3, -20, 100, "[[1],[2],[],[],[],[]]", now))

	result, err := repo.GetLatestPlanResult()
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.ID)
	assert.Equal(t, int64(-20), result.Score)
	assert.Equal(t, domain.BlockTable{{1}, {2}, {}, {}, {}, {}}, result.Blocks)

	mock.ExpectQuery("SELECT id, score, generations, blocks, created_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "score", "generations", "blocks", "created_at"}))
	_, err = repo.GetLatestPlanResult()
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
