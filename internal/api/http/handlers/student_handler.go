package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Raj-Randive/soar-school-management-system/internal/api/dto"
	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
	"github.com/Raj-Randive/soar-school-management-system/internal/service"
)

// StudentHandler manages student endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs handler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List GET /api/students/:school_id.
func (h *StudentHandler) List(c *fiber.Ctx) error {
	students, err := h.students.ListBySchool(c.UserContext(), param(c, "school_id"))
	if err != nil {
		return err
	}
	return dto.OK(c, "Students retrieved successfully", dto.NewStudentList(students))
}

// Enroll POST /api/students/:school_id.
func (h *StudentHandler) Enroll(c *fiber.Ctx) error {
	var req dto.StudentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	enrolled, err := optionalDate(req.EnrollmentDateField())
	if err != nil {
		return err
	}
	student, err := h.students.Enroll(c.UserContext(), actorFrom(c), param(c, "school_id"), service.StudentInput{
		Name:           stringValue(req.Name),
		Email:          req.Email,
		Phone:          req.Phone,
		ClassroomID:    req.ClassroomID,
		EnrollmentDate: enrolled,
		Status:         studentStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return dto.Created(c, "Student enrolled successfully", dto.NewStudentResponse(student))
}

// Get GET /api/students/details/:id.
func (h *StudentHandler) Get(c *fiber.Ctx) error {
	student, err := h.students.Get(c.UserContext(), param(c, "id"))
	if err != nil {
		return err
	}
	return dto.OK(c, "Student retrieved successfully", dto.NewStudentResponse(student))
}

// Update PUT /api/students/:id.
func (h *StudentHandler) Update(c *fiber.Ctx) error {
	var req dto.StudentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	enrolled, err := optionalDate(req.EnrollmentDateField())
	if err != nil {
		return err
	}
	student, err := h.students.Update(c.UserContext(), actorFrom(c), param(c, "id"), service.StudentUpdate{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		ClassroomID:    req.ClassroomID,
		EnrollmentDate: enrolled,
		Status:         studentStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return dto.OK(c, "Student profile updated successfully", dto.NewStudentResponse(student))
}

// Deactivate DELETE /api/students/:id.
func (h *StudentHandler) Deactivate(c *fiber.Ctx) error {
	if _, err := h.students.Deactivate(c.UserContext(), actorFrom(c), param(c, "id")); err != nil {
		return err
	}
	return dto.OK(c, "Student marked as inactive", nil)
}

func studentStatus(raw *string) *domain.StudentStatus {
	if raw == nil || *raw == "" {
		return nil
	}
	s := domain.StudentStatus(*raw)
	return &s
}
