package models

import "time"

// Section groups students taking an offering within an academic year and
// semester. The builder creates sections lazily when no existing one matches
// the (course, academic year, semester label) tuple.
type Section struct {
	ID            int64     `db:"id" json:"id"`
	CourseID      int64     `db:"course_id" json:"courseId"`
	AcademicYear  string    `db:"academic_year" json:"academicYear"`
	SemesterLabel string    `db:"semester_label" json:"semesterLabel"`
	Name          string    `db:"name" json:"name"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
