package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/acadops/course-scheduler-api/internal/models"
)

// SectionRepository resolves or lazily creates sections during generation.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository creates a new section repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// FindOrCreate returns the section matching (course, academic year, semester
// label), creating one named after the course code when none exists. The
// builder runs sequentially, so the read-then-insert race is not a concern
// within a generation run.
func (r *SectionRepository) FindOrCreate(ctx context.Context, courseID int64, academicYear, semesterLabel, courseCode string) (*models.Section, error) {
	const findQuery = `
SELECT id, course_id, academic_year, semester_label, name, created_at
FROM sections
WHERE course_id = $1 AND academic_year = $2 AND semester_label = $3
ORDER BY id
LIMIT 1`

	var section models.Section
	err := r.db.GetContext(ctx, &section, findQuery, courseID, academicYear, semesterLabel)
	if err == nil {
		return &section, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find section: %w", err)
	}

	section = models.Section{
		CourseID:      courseID,
		AcademicYear:  academicYear,
		SemesterLabel: semesterLabel,
		Name:          fmt.Sprintf("%s %s-%s", courseCode, academicYear, semesterLabel),
		CreatedAt:     time.Now().UTC(),
	}

	const insertQuery = `
INSERT INTO sections (course_id, academic_year, semester_label, name, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	if err := r.db.GetContext(ctx, &section.ID, insertQuery, section.CourseID, section.AcademicYear, section.SemesterLabel, section.Name, section.CreatedAt); err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}
	return &section, nil
}

// SemesterRepository reads academic terms.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository creates a new semester repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// FindByID loads a semester by id.
func (r *SemesterRepository) FindByID(ctx context.Context, id int64) (*models.Semester, error) {
	const query = `SELECT id, academic_year, label FROM semesters WHERE id = $1`
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}
