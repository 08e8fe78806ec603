package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acadops/course-scheduler-api/internal/models"
)

// ClassroomRepository reads bookable rooms.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository creates a new classroom repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// ListAvailable returns rooms usable by a department: its own rooms plus any
// marked shared, excluding unavailable and under-maintenance rooms.
func (r *ClassroomRepository) ListAvailable(ctx context.Context, departmentID int64) ([]models.Classroom, error) {
	const query = `
SELECT id, code, department_id, capacity, shared, availability, created_at, updated_at
FROM classrooms
WHERE availability = $1
  AND (shared = TRUE OR department_id = $2)
ORDER BY id`

	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, query, models.RoomAvailable, departmentID); err != nil {
		return nil, fmt.Errorf("list available classrooms: %w", err)
	}
	return rooms, nil
}
