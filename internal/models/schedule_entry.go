package models

import "time"

// ScheduleEntryStatus covers the approval workflow driven by the external
// presentation layer.
type ScheduleEntryStatus string

const (
	ScheduleEntryStatusPending  ScheduleEntryStatus = "PENDING"
	ScheduleEntryStatusApproved ScheduleEntryStatus = "APPROVED"
)

// ScheduleEntry assigns an offering to a faculty member, a room and one or
// more weekly time slots for a semester. Forced marks a fallback assignment
// made without a conflict-free option; downstream conflict checks and the UI
// must treat those as needs-attention rather than clean.
type ScheduleEntry struct {
	ID         string              `db:"id" json:"id"`
	OfferingID int64               `db:"offering_id" json:"offeringId"`
	FacultyID  int64               `db:"faculty_id" json:"facultyId"`
	RoomID     int64               `db:"room_id" json:"roomId"`
	SectionID  int64               `db:"section_id" json:"sectionId"`
	SemesterID int64               `db:"semester_id" json:"semesterId"`
	Status     ScheduleEntryStatus `db:"status" json:"status"`
	Forced     bool                `db:"forced" json:"forced"`
	CreatedAt  time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time           `db:"updated_at" json:"updatedAt"`

	Slots []TimeSlot `db:"-" json:"slots"`
}

// TotalHours sums the entry's slot durations in hours.
func (e ScheduleEntry) TotalHours() float64 {
	var total float64
	for _, slot := range e.Slots {
		total += slot.DurationHours()
	}
	return total
}

// ConflictType distinguishes double-booked faculty from double-booked rooms.
type ConflictType string

const (
	ConflictTypeFaculty ConflictType = "FACULTY"
	ConflictTypeRoom    ConflictType = "ROOM"
)

// Conflict reports one overlapping pair found by the detector. EntryA always
// belongs to the proposed batch; EntryB may be a proposed or persisted entry.
type Conflict struct {
	Type    ConflictType `json:"type"`
	Message string       `json:"message"`
	EntryA  string       `json:"entryA"`
	EntryB  string       `json:"entryB"`
	SlotA   TimeSlot     `json:"slotA"`
	SlotB   TimeSlot     `json:"slotB"`
}
