package models

// Semester identifies one schedulable term. Academic-calendar administration
// owns these rows; the builder reads them to label lazily created sections.
type Semester struct {
	ID           int64  `db:"id" json:"id"`
	AcademicYear string `db:"academic_year" json:"academicYear"`
	Label        string `db:"label" json:"label"`
}
