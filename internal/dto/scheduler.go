package dto

import "github.com/acadops/course-scheduler-api/internal/models"

// GenerationConstraints are the caller-togglable knobs of the generator.
// Availability checking inside the slot planner is intentionally NOT gated by
// AvoidCourseConflicts; see RespectFacultyAvailability docs on the service.
type GenerationConstraints struct {
	RespectFacultyAvailability bool `json:"respectFacultyAvailability"`
	RespectRoomCapacity        bool `json:"respectRoomCapacity"`
	AvoidCourseConflicts       bool `json:"avoidCourseConflicts"`
}

// GenerateScheduleRequest asks the builder for a proposed schedule covering a
// department's offerings in a semester.
type GenerateScheduleRequest struct {
	SemesterID           int64                 `json:"semesterId" validate:"required,min=1"`
	DepartmentID         int64                 `json:"departmentId" validate:"required,min=1"`
	MaxSectionsPerCourse int                   `json:"maxSectionsPerCourse" validate:"omitempty,min=1,max=10"`
	YearLevel            int                   `json:"yearLevel" validate:"omitempty,min=1,max=6"`
	Constraints          GenerationConstraints `json:"constraints"`
}

// ProposedEntry is one generated assignment, not yet persisted.
type ProposedEntry struct {
	ID         string            `json:"id"`
	OfferingID int64             `json:"offeringId" validate:"required,min=1"`
	CourseID   int64             `json:"courseId"`
	CourseCode string            `json:"courseCode"`
	FacultyID  int64             `json:"facultyId" validate:"required,min=1"`
	RoomID     int64             `json:"roomId" validate:"required,min=1"`
	SectionID  int64             `json:"sectionId" validate:"required,min=1"`
	SemesterID int64             `json:"semesterId" validate:"required,min=1"`
	Slots      []models.TimeSlot `json:"slots" validate:"required,min=1"`
	Forced     bool              `json:"forced"`
}

// GenerationSummary aggregates counters for the generate response meta.
type GenerationSummary struct {
	OfferingsTotal   int   `json:"offeringsTotal"`
	EntriesGenerated int   `json:"entriesGenerated"`
	OfferingsSkipped int   `json:"offeringsSkipped"`
	ForcedEntries    int   `json:"forcedEntries"`
	DurationMillis   int64 `json:"durationMillis"`
}

// GenerateScheduleResponse returns proposed entries plus per-offering skip
// reasons so unassignable offerings stay visible.
type GenerateScheduleResponse struct {
	Entries []ProposedEntry          `json:"entries"`
	Skipped []models.SkippedOffering `json:"skipped"`
	Summary GenerationSummary        `json:"summary"`
}

// SaveScheduleRequest persists a proposed batch, replacing the semester's
// prior schedule atomically.
type SaveScheduleRequest struct {
	SemesterID int64 `json:"semesterId" validate:"required,min=1"`
	// Entries are not dive-validated here: structurally broken entries are
	// skipped individually during save instead of failing the whole batch.
	Entries []ProposedEntry `json:"entries" validate:"required,min=1"`
}

// SaveScheduleResponse reports the outcome of a save.
type SaveScheduleResponse struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
}

// DetectConflictsRequest runs the advisory conflict pass over a proposed or
// hand-edited batch against the semester's persisted entries.
type DetectConflictsRequest struct {
	SemesterID   int64           `json:"semesterId" validate:"required,min=1"`
	DepartmentID int64           `json:"departmentId" validate:"omitempty,min=1"`
	Entries      []ProposedEntry `json:"entries" validate:"required,min=1"`
}

// DetectConflictsResponse lists every overlapping pair found.
type DetectConflictsResponse struct {
	Conflicts []models.Conflict `json:"conflicts"`
}

// ScheduleQuery filters the persisted-schedule listing.
type ScheduleQuery struct {
	SemesterID int64 `form:"semesterId" json:"semesterId"`
	Page       int   `form:"page" json:"page"`
	PageSize   int   `form:"pageSize" json:"pageSize"`
}
