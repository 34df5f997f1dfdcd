package validation

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

// Input resolves field values for rule evaluation.
type Input interface {
	Lookup(f Field) (any, bool)
}

// textSource is implemented by inputs that know which fields arrive as text.
// Inputs without it treat params and query as text.
type textSource interface {
	Textual(f Field) bool
}

// MapInput is an Input backed by decoded request parts. FormBody marks a
// body decoded from a form, whose values are all text.
type MapInput struct {
	Body     map[string]any
	Params   map[string]string
	Query    map[string]string
	FormBody bool
}

// Textual reports whether values of f arrive as text.
func (in MapInput) Textual(f Field) bool {
	return f.In != InBody || in.FormBody
}

// Lookup implements Input. Null body values count as absent.
func (in MapInput) Lookup(f Field) (any, bool) {
	switch f.In {
	case InParam:
		v, ok := in.Params[f.Name]
		return v, ok
	case InQuery:
		v, ok := in.Query[f.Name]
		return v, ok
	default:
		v, ok := lookupPath(in.Body, f.Name)
		return v, ok && v != nil
	}
}

func lookupPath(body map[string]any, path string) (any, bool) {
	var cur any = body
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Validate evaluates every rule and returns one entry per failing rule, in
// declaration order. It never stops at the first failure.
func Validate(input Input, rules []Rule) []apperrors.FieldError {
	var failures []apperrors.FieldError
	ts, _ := input.(textSource)
	for _, rule := range rules {
		value, present := input.Lookup(rule.Field)
		textual := rule.Field.In != InBody
		if ts != nil {
			textual = ts.Textual(rule.Field)
		}
		if !rule.passes(value, present, textual) {
			failures = append(failures, apperrors.FieldError{Field: rule.Field.Name, Message: rule.Message})
		}
	}
	return failures
}

// Handler short-circuits with a 400 carrying every failure, or passes through
// unchanged when all rules hold.
func Handler(rules []Rule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, bodyErr := InputFromCtx(c)
		failures := Validate(input, rules)
		if bodyErr != nil {
			failures = append([]apperrors.FieldError{*bodyErr}, failures...)
		}
		if len(failures) > 0 {
			return apperrors.NewValidationFailed(failures)
		}
		return c.Next()
	}
}

// InputFromCtx decodes params, query and a JSON or form body. An undecodable
// body yields an extra field error and an empty body map.
func InputFromCtx(c *fiber.Ctx) (MapInput, *apperrors.FieldError) {
	input := MapInput{
		Body:   map[string]any{},
		Params: c.AllParams(),
		Query:  c.Queries(),
	}

	raw := c.Body()
	if len(raw) == 0 {
		return input, nil
	}

	contentType := strings.ToLower(string(c.Request().Header.ContentType()))
	switch {
	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
		input.FormBody = true
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			input.Body[string(key)] = string(value)
		})
	default:
		if err := json.Unmarshal(raw, &input.Body); err != nil || input.Body == nil {
			input.Body = map[string]any{}
			return input, &apperrors.FieldError{Field: "body", Message: "Request body must be a JSON object"}
		}
	}
	return input, nil
}
