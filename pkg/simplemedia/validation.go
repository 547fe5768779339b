package simplemedia

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs struct tag validation and reports the first failure as
// a *ValidationError.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return invalid(fieldName(fe), describe(fe))
	}
	return invalid("", err.Error())
}

// fieldName turns "CreateVideoRequest.TextSections[1].Body" into
// "text_sections[1].body".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return toSnake(ns)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// normalizeSections trims, validates and assigns positions. A nil input
// means "no section list supplied" and yields nil.
func normalizeSections(inputs []TextSectionInput) ([]TextSection, error) {
	if inputs == nil {
		return nil, nil
	}

	sections := make([]TextSection, 0, len(inputs))
	for i, in := range inputs {
		body := strings.TrimSpace(in.Body)
		if body == "" {
			return nil, invalid(fmt.Sprintf("text_sections[%d].body", i), "is required")
		}

		position := i + 1
		if in.Position != nil {
			if *in.Position <= 0 {
				return nil, invalid(fmt.Sprintf("text_sections[%d].position", i), "must be a positive integer")
			}
			position = *in.Position
		}

		sections = append(sections, TextSection{
			Position: position,
			Heading:  trimmedOrNil(in.Heading),
			Body:     body,
		})
	}
	return sections, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
