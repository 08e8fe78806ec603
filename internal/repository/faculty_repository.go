package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acadops/course-scheduler-api/internal/models"
)

// FacultyRepository reads instructor rows. Faculty profiles are maintained by
// an external system; this service only queries qualification and availability.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository creates a new faculty repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// ListQualified returns department faculty whose declared specialization
// matches the course code and who have at least one availability row.
// Candidates without availability rows are excluded up front so the planner
// never considers instructors who cannot be booked at all.
func (r *FacultyRepository) ListQualified(ctx context.Context, courseCode string, departmentID int64) ([]models.Faculty, error) {
	const query = `
SELECT f.id, f.department_id, f.full_name, f.specialization, f.max_weekly_hours,
       EXISTS (SELECT 1 FROM faculty_availability fa WHERE fa.faculty_id = f.id) AS has_availability,
       f.created_at, f.updated_at
FROM faculties f
WHERE f.department_id = $1
  AND f.specialization = $2
  AND EXISTS (SELECT 1 FROM faculty_availability fa WHERE fa.faculty_id = f.id)
ORDER BY f.id`

	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, query, departmentID, courseCode); err != nil {
		return nil, fmt.Errorf("list qualified faculty for %s: %w", courseCode, err)
	}
	return faculty, nil
}
