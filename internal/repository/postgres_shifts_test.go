package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresShiftsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresShiftsRepository(db)
	return db, mock, repo
}

func shiftRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"shift_id", "owner_id", "caregiver_id", "patient_id", "patient_name",
		"start_time", "end_time", "status", "tasks", "created_at", "updated_at",
	})
}

func TestGetShift_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	created := start.Add(-24 * time.Hour)

	rows := shiftRows().AddRow(
		"shift-1", "owner-1", "cg-1", "pt-1", "Maria",
		start, end, "scheduled", []byte(`[{"description":"Lunch","isDone":false}]`), created, created,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs("shift-1").
		WillReturnRows(rows)

	shift, err := repo.GetShift(context.Background(), "shift-1")

	require.NoError(t, err)
	assert.Equal(t, "shift-1", shift.ShiftID)
	assert.Equal(t, "Maria", shift.PatientName)
	assert.Equal(t, start, shift.StartTime)
	require.Len(t, shift.Tasks, 1)
	assert.Equal(t, "Lunch", shift.Tasks[0].Description)
	assert.False(t, shift.Tasks[0].IsDone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetShift_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	shift, err := repo.GetShift(context.Background(), "missing")

	require.Error(t, err)
	assert.Nil(t, shift)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListShifts_FiltersByCaregiverAndStatus(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	rows := shiftRows().AddRow(
		"shift-1", "owner-1", "cg-1", "pt-1", "Maria",
		start, start.Add(time.Hour), "completed", []byte(`[]`), start, start,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs("cg-1", "completed").
		WillReturnRows(rows)

	shifts, err := repo.ListShifts(context.Background(), &ShiftFilters{
		CaregiverID: "cg-1",
		Status:      domain.ShiftStatusCompleted,
	})

	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, "shift-1", shifts[0].ShiftID)
	assert.Equal(t, []domain.ShiftTask{}, shifts[0].Tasks)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListShifts_EmptyResult(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("owner-9").
		WillReturnRows(shiftRows())

	shifts, err := repo.ListShifts(context.Background(), &ShiftFilters{OwnerID: "owner-9"})

	require.NoError(t, err)
	assert.Len(t, shifts, 0)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShift_MarshalsTasksAndGeneratesID(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	shift := &domain.Shift{
		OwnerID:     "owner-1",
		CaregiverID: "cg-1",
		PatientID:   "pt-1",
		PatientName: "Maria",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		Status:      domain.ShiftStatusScheduled,
		Tasks:       []domain.ShiftTask{{Description: "Medication", IsDone: false}},
	}

	mock.ExpectExec(`INSERT INTO shifts`).
		WithArgs(sqlmock.AnyArg(), "owner-1", "cg-1", "pt-1", "Maria",
			start, start.Add(2*time.Hour), "scheduled", []byte(`[{"description":"Medication","isDone":false}]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.CreateShift(context.Background(), shift)

	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShift_NilTasksStoredAsEmptyArray(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	shift := &domain.Shift{
		OwnerID:     "owner-1",
		CaregiverID: "cg-1",
		PatientID:   "pt-1",
		PatientName: "Maria",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Status:      domain.ShiftStatusScheduled,
	}

	mock.ExpectExec(`INSERT INTO shifts`).
		WithArgs(sqlmock.AnyArg(), "owner-1", "cg-1", "pt-1", "Maria",
			start, start.Add(time.Hour), "scheduled", []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := repo.CreateShift(context.Background(), shift)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteShift_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM shifts`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteShift(context.Background(), "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetShiftStatus_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE shifts SET status`).
		WithArgs("shift-1", "completed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetShiftStatus(context.Background(), "shift-1", domain.ShiftStatusCompleted)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
