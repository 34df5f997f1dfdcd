package domain

import "time"

// Classroom belongs to exactly one school; its name is unique within that school.
type Classroom struct {
	ID        string
	SchoolID  string
	Name      string
	Capacity  int
	Resources []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MergeResources appends resources not already present, keeping first-seen order.
func (c *Classroom) MergeResources(resources []string) {
	seen := make(map[string]struct{}, len(c.Resources)+len(resources))
	merged := make([]string, 0, len(c.Resources)+len(resources))
	for _, r := range append(append([]string{}, c.Resources...), resources...) {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		merged = append(merged, r)
	}
	c.Resources = merged
}
