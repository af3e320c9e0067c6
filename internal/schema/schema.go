package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrViolation is returned when model output does not match the declared shape.
	ErrViolation = errors.New("model output does not match schema")
	// ErrInvalidInput is returned when a caller-supplied request fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Decode unmarshals raw model output into out and validates it.
// Unknown fields are ignored; missing required fields are a violation.
func Decode(raw string, out any) error {
	raw = stripFence(raw)
	if raw == "" {
		return fmt.Errorf("%w: empty output", ErrViolation)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrViolation, err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %s", ErrViolation, describe(err))
	}
	return nil
}

// DecodeMap converts a loosely typed value (tool-call arguments) into out and validates it.
func DecodeMap(in map[string]any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrViolation, err)
	}
	return Decode(string(data), out)
}

// Request validates a caller-supplied request struct.
func Request(in any) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, describe(err))
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}
