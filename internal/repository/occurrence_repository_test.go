package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newOccurrenceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestOccurrenceRepositoryGetOrCreateReturnsExistingRow(t *testing.T) {
	db, mock, cleanup := newOccurrenceRepoMock(t)
	defer cleanup()
	repo := NewOccurrenceRepository(db)

	occurrenceAt := time.Date(2024, 1, 8, 13, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_instances (id, activity_id, occurrence_at, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (activity_id, occurrence_at) DO NOTHING")).
		WithArgs(sqlmock.AnyArg(), "act-1", occurrenceAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows := sqlmock.NewRows([]string{"id", "activity_id", "occurrence_at", "created_at"}).
		AddRow("inst-1", "act-1", occurrenceAt, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, activity_id, occurrence_at, created_at FROM activity_instances WHERE activity_id = $1 AND occurrence_at = $2")).
		WithArgs("act-1", occurrenceAt).
		WillReturnRows(rows)

	instance, err := repo.GetOrCreate(context.Background(), "act-1", occurrenceAt)
	require.NoError(t, err)
	require.Equal(t, "inst-1", instance.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOccurrenceRepositoryFindPassesThroughNoRows(t *testing.T) {
	db, mock, cleanup := newOccurrenceRepoMock(t)
	defer cleanup()
	repo := NewOccurrenceRepository(db)

	occurrenceAt := time.Date(2024, 1, 8, 13, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, activity_id, occurrence_at, created_at FROM activity_instances WHERE activity_id = $1 AND occurrence_at = $2")).
		WithArgs("act-1", occurrenceAt).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "act-1", occurrenceAt)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOccurrenceRepositoryAddParticipantCommits(t *testing.T) {
	db, mock, cleanup := newOccurrenceRepoMock(t)
	defer cleanup()
	repo := NewOccurrenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM activity_instances WHERE id = $1 FOR UPDATE")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inst-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM activity_participants WHERE instance_id = $1")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_participants (instance_id, resident_id, created_at) VALUES ($1, $2, $3) ON CONFLICT (instance_id, resident_id) DO NOTHING")).
		WithArgs("inst-1", "res-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.AddParticipant(context.Background(), "inst-1", "res-1", 10)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOccurrenceRepositoryAddParticipantFullRollsBack(t *testing.T) {
	db, mock, cleanup := newOccurrenceRepoMock(t)
	defer cleanup()
	repo := NewOccurrenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM activity_instances WHERE id = $1 FOR UPDATE")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inst-1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM activity_participants WHERE instance_id = $1")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectRollback()

	err := repo.AddParticipant(context.Background(), "inst-1", "res-1", 5)
	require.True(t, errors.Is(err, ErrRosterFull))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOccurrenceRepositoryAddParticipantUnlimitedSkipsCount(t *testing.T) {
	db, mock, cleanup := newOccurrenceRepoMock(t)
	defer cleanup()
	repo := NewOccurrenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM activity_instances WHERE id = $1 FOR UPDATE")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inst-1"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_participants (instance_id, resident_id, created_at) VALUES ($1, $2, $3) ON CONFLICT (instance_id, resident_id) DO NOTHING")).
		WithArgs("inst-1", "res-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.AddParticipant(context.Background(), "inst-1", "res-1", 0)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOccurrenceRepositoryRemoveParticipantMissingIsNoop(t *testing.T) {
	db, mock, cleanup := newOccurrenceRepoMock(t)
	defer cleanup()
	repo := NewOccurrenceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM activity_participants WHERE instance_id = $1 AND resident_id = $2")).
		WithArgs("inst-1", "res-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RemoveParticipant(context.Background(), "inst-1", "res-9")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
