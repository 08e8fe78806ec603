package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionRepositoryFindOrCreateExisting(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSectionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "academic_year", "semester_label", "name", "created_at"}).
		AddRow(int64(5), int64(1), "2026/2027", "ODD", "CS101 2026/2027-ODD", time.Now())
	mock.ExpectQuery(`FROM sections WHERE course_id = \$1 AND academic_year = \$2 AND semester_label = \$3`).
		WithArgs(int64(1), "2026/2027", "ODD").
		WillReturnRows(rows)

	section, err := repo.FindOrCreate(context.Background(), 1, "2026/2027", "ODD", "CS101")
	require.NoError(t, err)
	assert.Equal(t, int64(5), section.ID)
	assert.Equal(t, "CS101 2026/2027-ODD", section.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryFindOrCreateInserts(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSectionRepository(db)

	mock.ExpectQuery(`FROM sections WHERE course_id = \$1`).
		WithArgs(int64(1), "2026/2027", "ODD").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO sections`).
		WithArgs(int64(1), "2026/2027", "ODD", "CS101 2026/2027-ODD", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	section, err := repo.FindOrCreate(context.Background(), 1, "2026/2027", "ODD", "CS101")
	require.NoError(t, err)
	assert.Equal(t, int64(9), section.ID)
	assert.Equal(t, "CS101 2026/2027-ODD", section.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
