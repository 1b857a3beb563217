package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a request field to its validation messages. It is rendered
// as-is in 400 responses.
type Errors map[string][]string

// New returns Errors holding a single message for field.
func New(field, message string) Errors {
	return Errors{field: {message}}
}

// Add appends message to field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// OrNil returns nil when no message was added.
func (e Errors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// FromBinding converts errors produced by gin's ShouldBind* into Errors.
// Errors that are not field validation failures (malformed JSON) are
// reported under "non_field_errors".
func FromBinding(err error) Errors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return New("non_field_errors", "Malformed request body.")
	}

	out := Errors{}
	for _, fe := range verrs {
		out.Add(fieldName(fe), message(fe))
	}
	return out
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	// drop the struct name prefix, keep nested paths like ingredients[0].amount
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min", "gte":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max", "lte":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "hexcolor6":
		return colorMessage
	case "username":
		return usernameMessage(fe.Value())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

func usernameMessage(v interface{}) string {
	s, _ := v.(string)
	if msg := forbiddenUsernameMessage(s); msg != "" {
		return msg
	}
	return "Invalid username."
}
