package dto

import (
	"time"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
)

// StudentRequest is used for enrollment and profile updates. Dates accept
// RFC 3339 or YYYY-MM-DD. The enrollment date is read from either
// "enrollment_date" or the legacy "enrollmentDate" key.
type StudentRequest struct {
	Name                 *string `json:"name"`
	Email                *string `json:"email"`
	Phone                *string `json:"phone"`
	ClassroomID          *string `json:"classroom_id"`
	EnrollmentDate       *string `json:"enrollment_date"`
	LegacyEnrollmentDate *string `json:"enrollmentDate"`
	Status               *string `json:"status"`
}

// EnrollmentDateField returns the body key that carried the enrollment date
// and its value. The snake_case key wins when both are sent.
func (r StudentRequest) EnrollmentDateField() (string, *string) {
	if r.EnrollmentDate == nil && r.LegacyEnrollmentDate != nil {
		return "enrollmentDate", r.LegacyEnrollmentDate
	}
	return "enrollment_date", r.EnrollmentDate
}

// StudentResponse is the public view of a student.
type StudentResponse struct {
	ID             string               `json:"id"`
	SchoolID       string               `json:"school_id"`
	ClassroomID    *string              `json:"classroom_id"`
	Name           string               `json:"name"`
	Email          *string              `json:"email,omitempty"`
	Phone          *string              `json:"phone,omitempty"`
	EnrollmentDate time.Time            `json:"enrollment_date"`
	Status         domain.StudentStatus `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// NewStudentResponse maps a domain student.
func NewStudentResponse(s *domain.Student) StudentResponse {
	return StudentResponse{
		ID:             s.ID,
		SchoolID:       s.SchoolID,
		ClassroomID:    s.ClassroomID,
		Name:           s.Name,
		Email:          s.Email,
		Phone:          s.Phone,
		EnrollmentDate: s.EnrollmentDate,
		Status:         s.Status,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// NewStudentList maps a slice of students.
func NewStudentList(students []domain.Student) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for i := range students {
		out = append(out, NewStudentResponse(&students[i]))
	}
	return out
}
