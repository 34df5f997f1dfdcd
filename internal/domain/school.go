package domain

import "time"

// School is the tenant root; classrooms and students hang off it.
type School struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	AdminIDs  []string
	Capacity  int
	Resources []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAdmin reports whether userID is already listed as an administrator.
func (s *School) HasAdmin(userID string) bool {
	for _, id := range s.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
