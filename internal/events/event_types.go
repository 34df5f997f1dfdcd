package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered     EventType = "user.registered"
	EventSchoolCreated      EventType = "school.created"
	EventSchoolUpdated      EventType = "school.updated"
	EventSchoolDeleted      EventType = "school.deleted"
	EventClassroomCreated   EventType = "classroom.created"
	EventClassroomUpdated   EventType = "classroom.updated"
	EventClassroomDeleted   EventType = "classroom.deleted"
	EventStudentEnrolled    EventType = "student.enrolled"
	EventStudentUpdated     EventType = "student.updated"
	EventStudentDeactivated EventType = "student.deactivated"
)

// AllTypes lists every event type, for subscribers that want everything.
func AllTypes() []EventType {
	return []EventType{
		EventUserRegistered,
		EventSchoolCreated, EventSchoolUpdated, EventSchoolDeleted,
		EventClassroomCreated, EventClassroomUpdated, EventClassroomDeleted,
		EventStudentEnrolled, EventStudentUpdated, EventStudentDeactivated,
	}
}

// Actor identifies the caller that caused an event.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	SchoolID   string    `json:"school_id,omitempty"`
	ResourceID string    `json:"resource_id"`
	Actor      Actor     `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(t EventType, schoolID, resourceID string, actor Actor, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		SchoolID:   schoolID,
		ResourceID: resourceID,
		Actor:      actor,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}

// SchoolPayload is attached to school events.
type SchoolPayload struct {
	Name     string   `json:"name"`
	Capacity int      `json:"capacity"`
	AdminIDs []string `json:"admin_ids,omitempty"`
}

// ClassroomPayload is attached to classroom events.
type ClassroomPayload struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// StudentPayload is attached to student events.
type StudentPayload struct {
	Name        string               `json:"name"`
	ClassroomID *string              `json:"classroom_id,omitempty"`
	Status      domain.StudentStatus `json:"status"`
}

// UserPayload is attached to user.registered.
type UserPayload struct {
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	SchoolID *string     `json:"school_id,omitempty"`
}
