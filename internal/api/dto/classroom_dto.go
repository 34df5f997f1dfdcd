package dto

import (
	"time"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
)

// CreateClassroomRequest payload.
type CreateClassroomRequest struct {
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Resources []string `json:"resources"`
}

// UpdateClassroomRequest payload; resources are merged into the existing list.
type UpdateClassroomRequest struct {
	Name      *string  `json:"name"`
	Capacity  *int     `json:"capacity"`
	Resources []string `json:"resources"`
}

// ClassroomResponse is the public view of a classroom.
type ClassroomResponse struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"school_id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Resources []string  `json:"resources"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewClassroomResponse maps a domain classroom.
func NewClassroomResponse(c *domain.Classroom) ClassroomResponse {
	return ClassroomResponse{
		ID:        c.ID,
		SchoolID:  c.SchoolID,
		Name:      c.Name,
		Capacity:  c.Capacity,
		Resources: nonNil(c.Resources),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewClassroomList maps a slice of classrooms.
func NewClassroomList(classrooms []domain.Classroom) []ClassroomResponse {
	out := make([]ClassroomResponse, 0, len(classrooms))
	for i := range classrooms {
		out = append(out, NewClassroomResponse(&classrooms[i]))
	}
	return out
}
