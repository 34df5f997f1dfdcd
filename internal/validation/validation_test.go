package validation

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

func body(t *testing.T, raw string) MapInput {
	t.Helper()
	in := MapInput{Body: map[string]any{}}
	require.NoError(t, json.Unmarshal([]byte(raw), &in.Body))
	return in
}

func TestValidate_AggregatesAllFailures(t *testing.T) {
	rules := []Rule{
		Body("name").Required("Name is required"),
		Body("address").Required("Address is required"),
		Body("phone").Length(7, 20, "Phone must be 7-20 characters"),
		Body("capacity").Int("Capacity must be an integer"),
	}

	failures := Validate(body(t, `{"phone":"12","capacity":30}`), rules)

	assert.Equal(t, []apperrors.FieldError{
		{Field: "name", Message: "Name is required"},
		{Field: "address", Message: "Address is required"},
		{Field: "phone", Message: "Phone must be 7-20 characters"},
	}, failures)
}

func TestValidate_NoFailures(t *testing.T) {
	rules := []Rule{
		Body("name").Required("required"),
		Body("capacity").Range(1, 500, "range"),
	}
	assert.Empty(t, Validate(body(t, `{"name":"North High","capacity":120}`), rules))
}

func TestValidate_OptionalOnlyWhenPresent(t *testing.T) {
	rule := Body("email").Email("Invalid email").Optional()

	assert.Empty(t, Validate(body(t, `{}`), []Rule{rule}))
	assert.Empty(t, Validate(body(t, `{"email":null}`), []Rule{rule}))
	assert.Empty(t, Validate(body(t, `{"email":"kid@school.org"}`), []Rule{rule}))
	assert.Len(t, Validate(body(t, `{"email":"nope"}`), []Rule{rule}), 1)

	// without Optional an absent field fails its predicate
	assert.Len(t, Validate(body(t, `{}`), []Rule{Body("email").Email("Invalid email")}), 1)
}

func TestPredicates(t *testing.T) {
	cases := []struct {
		name string
		rule Rule
		json string
		ok   bool
	}{
		{"required blank", Body("n").Required("m"), `{"n":"   "}`, false},
		{"required zero number", Body("n").Required("m"), `{"n":0}`, true},
		{"string", Body("n").String("m"), `{"n":"x"}`, true},
		{"string wrong type", Body("n").String("m"), `{"n":1}`, false},
		{"int", Body("n").Int("m"), `{"n":3}`, true},
		{"int fractional", Body("n").Int("m"), `{"n":3.5}`, false},
		{"int string in json body", Body("n").Int("m"), `{"n":"3"}`, false},
		{"number", Body("n").Number("m"), `{"n":3.5}`, true},
		{"number string in json body", Body("n").Number("m"), `{"n":"3.5"}`, false},
		{"range string in json body", Body("n").Range(1, 10, "m"), `{"n":"5"}`, false},
		{"bool string in json body", Body("n").Bool("m"), `{"n":"true"}`, false},
		{"bool", Body("n").Bool("m"), `{"n":true}`, true},
		{"string array", Body("n").StringArray("m"), `{"n":["a","b"]}`, true},
		{"string array mixed", Body("n").StringArray("m"), `{"n":["a",1]}`, false},
		{"length max", Body("n").Length(1, 3, "m"), `{"n":"abcd"}`, false},
		{"length unbounded", Body("n").Length(6, 0, "m"), `{"n":"abcdefghij"}`, true},
		{"email", Body("n").Email("m"), `{"n":"a@b.io"}`, true},
		{"matches", Body("n").Matches(regexp.MustCompile(`^\+?[0-9 -]+$`), "m"), `{"n":"+1 555-0100"}`, true},
		{"uuid", Body("n").UUID("m"), `{"n":"7d444840-9dc0-11d1-b245-5ffdce74fad2"}`, true},
		{"uuid bad", Body("n").UUID("m"), `{"n":"64b7f0c2e1"}`, false},
		{"date", Body("n").Date("m"), `{"n":"2024-09-01"}`, true},
		{"date rfc3339", Body("n").Date("m"), `{"n":"2024-09-01T08:00:00Z"}`, true},
		{"date bad", Body("n").Date("m"), `{"n":"yesterday"}`, false},
		{"one of", Body("n").OneOf("m", "active", "inactive"), `{"n":"active"}`, true},
		{"one of miss", Body("n").OneOf("m", "active", "inactive"), `{"n":"gone"}`, false},
		{"range low", Body("n").Range(1, 10, "m"), `{"n":0}`, false},
		{"nested path", Body("a.b").Required("m"), `{"a":{"b":"x"}}`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			failures := Validate(body(t, tc.json), []Rule{tc.rule})
			assert.Equal(t, tc.ok, len(failures) == 0)
		})
	}
}

func TestValidate_FormBodyValuesAreText(t *testing.T) {
	rules := []Rule{Body("capacity").Int("m"), Body("capacity").Range(1, 10, "m")}

	form := MapInput{Body: map[string]any{"capacity": "5"}, FormBody: true}
	assert.Empty(t, Validate(form, rules))

	jsonBody := MapInput{Body: map[string]any{"capacity": "5"}}
	assert.Len(t, Validate(jsonBody, rules), 2)
}

func TestParamAndQueryLookup(t *testing.T) {
	in := MapInput{Params: map[string]string{"id": "12"}, Query: map[string]string{"page": "x"}}
	failures := Validate(in, []Rule{
		Param("id").Int("id must be numeric"),
		Query("page").Int("page must be numeric"),
	})
	assert.Equal(t, []apperrors.FieldError{{Field: "page", Message: "page must be numeric"}}, failures)
}

func newApp(rules []Rule, reached *bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).JSON(fiber.Map{"message": de.Message, "errors": de.Fields})
	}})
	app.Post("/schools/:id", Handler(rules), func(c *fiber.Ctx) error {
		*reached = true
		return c.SendStatus(http.StatusCreated)
	})
	return app
}

func TestHandler_ShortCircuits(t *testing.T) {
	reached := false
	app := newApp([]Rule{
		Body("name").Required("Name is required"),
		Body("capacity").Int("Capacity must be an integer"),
	}, &reached)

	req := httptest.NewRequest(http.MethodPost, "/schools/1", strings.NewReader(`{"capacity":"lots"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, reached)

	raw, _ := io.ReadAll(resp.Body)
	var out struct {
		Message string                 `json:"message"`
		Errors  []apperrors.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "Validation failed", out.Message)
	assert.Len(t, out.Errors, 2)
}

func TestHandler_PassesThrough(t *testing.T) {
	reached := false
	app := newApp([]Rule{Body("name").Required("Name is required"), Param("id").Int("id")}, &reached)

	req := httptest.NewRequest(http.MethodPost, "/schools/7", strings.NewReader(`{"name":"West"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, reached)
}

func TestHandler_FormBodyAndBadJSON(t *testing.T) {
	reached := false
	app := newApp([]Rule{Body("name").Required("Name is required"), Body("capacity").Int("Capacity must be an integer")}, &reached)
	req := httptest.NewRequest(http.MethodPost, "/schools/7", strings.NewReader("name=West&capacity=30"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	reached = false
	req = httptest.NewRequest(http.MethodPost, "/schools/7", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, reached)
}
