package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/smart-todo/smart-todo-list/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

func init() {
	Validate = validator.New()

	// Report JSON field names in errors instead of Go struct field names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := Validate.RegisterValidation("task_status", validateTaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register task_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("source_type", validateSourceType); err != nil {
		panic(fmt.Sprintf("failed to register source_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("hex_color", validateHexColor); err != nil {
		panic(fmt.Sprintf("failed to register hex_color validator: %v", err))
	}
}

// validateTaskStatus validates that a string is a valid TaskStatus enum value
func validateTaskStatus(fl validator.FieldLevel) bool {
	return models.TaskStatus(fl.Field().String()).Valid()
}

// validateSourceType validates that a string is a valid SourceType enum value
func validateSourceType(fl validator.FieldLevel) bool {
	return models.SourceType(fl.Field().String()).Valid()
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorPattern.MatchString(fl.Field().String())
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when a request body fails validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewError builds a validation error for a single field.
func NewError(field, message string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Message: message}}}
}

type normalizer interface {
	Normalize()
}

// Struct normalizes v when it supports it and validates it against its
// struct tags. Failures are returned as *Error.
func Struct(v any) error {
	if n, ok := v.(normalizer); ok {
		n.Normalize()
	}
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe),
			Message: describe(fe),
		})
	}
	return out
}

// fieldPath strips the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "task_status":
		return "must be one of pending, in_progress, completed, cancelled"
	case "source_type":
		return "must be one of email, whatsapp, notes, calendar"
	case "hex_color":
		return "must be a hex color like #3B82F6"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
