package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Raj-Randive/soar-school-management-system/internal/api/dto"
	"github.com/Raj-Randive/soar-school-management-system/internal/service"
)

// ClassroomHandler manages classroom endpoints.
type ClassroomHandler struct {
	classrooms *service.ClassroomService
}

// NewClassroomHandler constructs handler.
func NewClassroomHandler(classrooms *service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{classrooms: classrooms}
}

// List GET /api/classrooms/:school_id.
func (h *ClassroomHandler) List(c *fiber.Ctx) error {
	classrooms, err := h.classrooms.ListBySchool(c.UserContext(), param(c, "school_id"))
	if err != nil {
		return err
	}
	return dto.OK(c, "Classrooms retrieved successfully", dto.NewClassroomList(classrooms))
}

// Create POST /api/classrooms/:school_id.
func (h *ClassroomHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateClassroomRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	classroom, err := h.classrooms.Create(c.UserContext(), actorFrom(c), param(c, "school_id"), service.ClassroomInput{
		Name:      req.Name,
		Capacity:  req.Capacity,
		Resources: req.Resources,
	})
	if err != nil {
		return err
	}
	return dto.Created(c, "Classroom created successfully", dto.NewClassroomResponse(classroom))
}

// Get GET /api/classrooms/:id/details.
func (h *ClassroomHandler) Get(c *fiber.Ctx) error {
	classroom, err := h.classrooms.Get(c.UserContext(), param(c, "id"))
	if err != nil {
		return err
	}
	return dto.OK(c, "Classroom retrieved successfully", dto.NewClassroomResponse(classroom))
}

// Update PUT /api/classrooms/:id/update.
func (h *ClassroomHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateClassroomRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	classroom, err := h.classrooms.Update(c.UserContext(), actorFrom(c), param(c, "id"), service.ClassroomUpdate{
		Name:      req.Name,
		Capacity:  req.Capacity,
		Resources: req.Resources,
	})
	if err != nil {
		return err
	}
	return dto.OK(c, "Classroom updated successfully", dto.NewClassroomResponse(classroom))
}

// Delete DELETE /api/classrooms/:id.
func (h *ClassroomHandler) Delete(c *fiber.Ctx) error {
	if err := h.classrooms.Delete(c.UserContext(), actorFrom(c), param(c, "id")); err != nil {
		return err
	}
	return dto.OK(c, "Classroom deleted successfully", nil)
}
