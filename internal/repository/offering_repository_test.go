package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadops/course-scheduler-api/internal/models"
)

func offeringRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "course_id", "course_code", "title", "department_id", "semester_id", "lecture_hours", "lab_hours", "expected_students", "year_level", "status", "created_at", "updated_at"}).
		AddRow(int64(1), int64(1), "CS101", "Intro to Programming", int64(1), int64(10), 2, 1, 40, 1, "PENDING", now, now)
}

func TestOfferingRepositoryListForGeneration(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewOfferingRepository(db)

	mock.ExpectQuery(`FROM offerings WHERE semester_id = \$1 AND department_id = \$2 AND status <> \$3 ORDER BY course_code, id`).
		WithArgs(int64(10), int64(1), string(models.OfferingStatusCancelled)).
		WillReturnRows(offeringRows())

	offerings, err := repo.ListForGeneration(context.Background(), 10, 1, 0)
	require.NoError(t, err)
	require.Len(t, offerings, 1)
	assert.Equal(t, "CS101", offerings[0].CourseCode)
	assert.Equal(t, 3, offerings[0].RequiredHours())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferingRepositoryListForGenerationYearFilter(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewOfferingRepository(db)

	mock.ExpectQuery(`AND year_level = \$4`).
		WithArgs(int64(10), int64(1), string(models.OfferingStatusCancelled), 2).
		WillReturnRows(offeringRows())

	_, err := repo.ListForGeneration(context.Background(), 10, 1, 2)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferingRepositoryMarkScheduledTx(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewOfferingRepository(db)

	mock.ExpectExec(`UPDATE offerings SET status = \$1, updated_at = \$2 WHERE id IN \(\$3, \$4\)`).
		WithArgs(string(models.OfferingStatusScheduled), sqlmock.AnyArg(), int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.MarkScheduledTx(context.Background(), db, []int64{1, 2}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferingRepositoryMarkScheduledTxEmpty(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewOfferingRepository(db)

	require.NoError(t, repo.MarkScheduledTx(context.Background(), db, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
