package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"School Management":      "school-management",
		"  Ünïcödé   Académie  ": "unicode-academie",
		"Soar/School_Service":    "soar-school-service",
		"Tom & Jerry":            "tom-y-jerry",
		"a -- b":                 "a-b",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestUpCaseFirst(t *testing.T) {
	assert.Equal(t, "School", UpCaseFirst("school"))
	assert.Equal(t, "", UpCaseFirst(""))
	assert.Equal(t, "Élan", UpCaseFirst("élan"))
}

func TestWildcardMatch(t *testing.T) {
	assert.True(t, WildcardMatch("student.enrolled", "student.*"))
	assert.True(t, WildcardMatch("anything", "*"))
	assert.False(t, WildcardMatch("school.created", "student.*"))
	assert.True(t, WildcardMatch("a.b(c)", "a.b(c)"))
}
