package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadops/course-scheduler-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestScheduleEntryRepositoryHasConflictFaculty(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewScheduleEntryRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(1), int64(10), 1, 600, 540).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	conflicting, err := repo.HasConflict(context.Background(), models.ConflictTypeFaculty, 1, 10, 1, 540, 600)
	require.NoError(t, err)
	assert.True(t, conflicting)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleEntryRepositoryHasConflictRoomColumn(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewScheduleEntryRepository(db)

	mock.ExpectQuery(`e\.room_id = \$1`).
		WithArgs(int64(7), int64(10), 1, 600, 540).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	conflicting, err := repo.HasConflict(context.Background(), models.ConflictTypeRoom, 7, 10, 1, 540, 600)
	require.NoError(t, err)
	assert.False(t, conflicting)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleEntryRepositoryListBySemesterAssemblesSlots(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewScheduleEntryRepository(db)
	now := time.Now()

	entryRows := sqlmock.NewRows([]string{"id", "offering_id", "faculty_id", "room_id", "section_id", "semester_id", "status", "forced", "created_at", "updated_at"}).
		AddRow("entry-1", int64(1), int64(2), int64(3), int64(4), int64(10), "PENDING", false, now, now).
		AddRow("entry-2", int64(5), int64(6), int64(7), int64(8), int64(10), "PENDING", true, now, now)
	mock.ExpectQuery(`FROM schedule_entries`).
		WithArgs(int64(10)).
		WillReturnRows(entryRows)

	slotRows := sqlmock.NewRows([]string{"schedule_entry_id", "day_of_week", "start_minute", "end_minute"}).
		AddRow("entry-1", 1, 540, 720).
		AddRow("entry-1", 3, 540, 600).
		AddRow("entry-2", 2, 420, 600)
	mock.ExpectQuery(`FROM schedule_entry_slots`).
		WithArgs(int64(10)).
		WillReturnRows(slotRows)

	entries, err := repo.ListBySemester(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Len(t, entries[0].Slots, 2)
	assert.Len(t, entries[1].Slots, 1)
	assert.True(t, entries[1].Forced)
	assert.Equal(t, 540, entries[0].Slots[0].StartMinute)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleEntryRepositoryListBySemesterEmpty(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewScheduleEntryRepository(db)

	mock.ExpectQuery(`FROM schedule_entries`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "offering_id", "faculty_id", "room_id", "section_id", "semester_id", "status", "forced", "created_at", "updated_at"}))

	entries, err := repo.ListBySemester(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleEntryRepositoryInsertTx(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewScheduleEntryRepository(db)

	mock.ExpectExec(`INSERT INTO schedule_entries`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO schedule_entry_slots`).
		WithArgs(sqlmock.AnyArg(), 1, 540, 720).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.ScheduleEntry{
		OfferingID: 1,
		FacultyID:  2,
		RoomID:     3,
		SectionID:  4,
		SemesterID: 10,
		Slots: []models.TimeSlot{
			{DayOfWeek: 1, StartMinute: 540, EndMinute: 720},
		},
	}
	err := repo.InsertTx(context.Background(), db, entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID, "id must be generated when absent")
	assert.Equal(t, models.ScheduleEntryStatusPending, entry.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleEntryRepositoryDeleteBySemesterTx(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewScheduleEntryRepository(db)

	mock.ExpectExec(`DELETE FROM schedule_entries WHERE semester_id = \$1`).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteBySemesterTx(context.Background(), db, 10))
	assert.NoError(t, mock.ExpectationsWereMet())
}
