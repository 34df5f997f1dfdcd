package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Raj-Randive/soar-school-management-system/internal/api/dto"
	"github.com/Raj-Randive/soar-school-management-system/internal/service"
)

// SchoolHandler manages school endpoints.
type SchoolHandler struct {
	schools *service.SchoolService
}

// NewSchoolHandler constructs handler.
func NewSchoolHandler(schools *service.SchoolService) *SchoolHandler {
	return &SchoolHandler{schools: schools}
}

// List GET /api/schools.
func (h *SchoolHandler) List(c *fiber.Ctx) error {
	schools, err := h.schools.List(c.UserContext())
	if err != nil {
		return err
	}
	return dto.OK(c, "Schools retrieved successfully", dto.NewSchoolList(schools))
}

// Create POST /api/schools/create.
func (h *SchoolHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSchoolRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	school, err := h.schools.Create(c.UserContext(), actorFrom(c), service.SchoolInput{
		Name:      req.Name,
		Address:   req.Address,
		Phone:     req.Phone,
		Capacity:  req.Capacity,
		Resources: req.Resources,
		AdminID:   req.AdminID,
	})
	if err != nil {
		return err
	}
	return dto.Created(c, "School created successfully", dto.NewSchoolResponse(school))
}

// Get GET /api/schools/:id.
func (h *SchoolHandler) Get(c *fiber.Ctx) error {
	school, err := h.schools.Get(c.UserContext(), param(c, "id"))
	if err != nil {
		return err
	}
	return dto.OK(c, "School retrieved successfully", dto.NewSchoolResponse(school))
}

// Update PUT /api/schools/:id.
func (h *SchoolHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateSchoolRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	school, err := h.schools.Update(c.UserContext(), actorFrom(c), param(c, "id"), service.SchoolUpdate{
		Name:       req.Name,
		Address:    req.Address,
		Phone:      req.Phone,
		Capacity:   req.Capacity,
		Resources:  req.Resources,
		NewAdminID: req.NewAdminID,
	})
	if err != nil {
		return err
	}
	return dto.OK(c, "School updated successfully", dto.NewSchoolResponse(school))
}

// Delete DELETE /api/schools/:id.
func (h *SchoolHandler) Delete(c *fiber.Ctx) error {
	if err := h.schools.Delete(c.UserContext(), actorFrom(c), param(c, "id")); err != nil {
		return err
	}
	return dto.OK(c, "School deleted successfully", nil)
}
