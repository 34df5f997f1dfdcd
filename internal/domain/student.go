package domain

import "time"

// StudentStatus enumerates enrollment states.
type StudentStatus string

const (
	StudentStatusActive      StudentStatus = "active"
	StudentStatusTransferred StudentStatus = "transferred"
	StudentStatusInactive    StudentStatus = "inactive"
)

// StudentStatuses lists valid statuses as strings, for membership rules.
func StudentStatuses() []string {
	return []string{string(StudentStatusActive), string(StudentStatusTransferred), string(StudentStatusInactive)}
}

// Student is enrolled in a school and optionally seated in one of its classrooms.
type Student struct {
	ID             string
	SchoolID       string
	ClassroomID    *string
	Name           string
	Email          *string
	Phone          *string
	EnrollmentDate time.Time
	Status         StudentStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
