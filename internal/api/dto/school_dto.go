package dto

import (
	"time"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
)

// CreateSchoolRequest payload.
type CreateSchoolRequest struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Phone     string   `json:"phone"`
	Capacity  int      `json:"capacity"`
	Resources []string `json:"resources"`
	AdminID   *string  `json:"admin_id"`
}

// UpdateSchoolRequest payload; absent fields are left unchanged.
type UpdateSchoolRequest struct {
	Name       *string  `json:"name"`
	Address    *string  `json:"address"`
	Phone      *string  `json:"phone"`
	Capacity   *int     `json:"capacity"`
	Resources  []string `json:"resources"`
	NewAdminID *string  `json:"new_admin_id"`
}

// SchoolResponse is the public view of a school.
type SchoolResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	AdminIDs  []string  `json:"admin_ids"`
	Capacity  int       `json:"capacity"`
	Resources []string  `json:"resources"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSchoolResponse maps a domain school.
func NewSchoolResponse(s *domain.School) SchoolResponse {
	return SchoolResponse{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		Phone:     s.Phone,
		AdminIDs:  nonNil(s.AdminIDs),
		Capacity:  s.Capacity,
		Resources: nonNil(s.Resources),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// NewSchoolList maps a slice of schools.
func NewSchoolList(schools []domain.School) []SchoolResponse {
	out := make([]SchoolResponse, 0, len(schools))
	for i := range schools {
		out = append(out, NewSchoolResponse(&schools[i]))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
