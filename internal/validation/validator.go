// Package validation wires go-playground/validator with the custom rules the
// API payloads use and turns validator failures into field-level messages.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/zaqqye/hotel_backend/internal/apperror"
	"github.com/zaqqye/hotel_backend/internal/models"
)

// TagName matches gin's binding tag so the same structs validate in both places.
const TagName = "binding"

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName(TagName)
	if err := Register(v); err != nil {
		panic(err)
	}
	return &Validator{v: v}
}

// Validate runs struct validation and returns an apperror on failure.
func (v *Validator) Validate(i any) error {
	if err := v.v.Struct(i); err != nil {
		return Translate(err)
	}
	return nil
}

// Register installs the custom rules and reports fields by their json name.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonName)
	rules := map[string]validator.Func{
		"roomtype": func(fl validator.FieldLevel) bool {
			return models.IsValidRoomType(fl.Field().String())
		},
		"isodate": func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String())
			return err == nil
		},
		"role": func(fl validator.FieldLevel) bool {
			r := fl.Field().String()
			return r == models.RoleGuest || r == models.RoleAdmin
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// ParseDate accepts a calendar date or a full ISO 8601 timestamp and returns
// the date as written, at midnight UTC. A timestamp's offset does not move it
// to another day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Translate converts binding and validator failures into an apperror carrying
// the first offending field. Other errors become a generic validation error.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if apperror.CodeOf(err) != "" {
		return err
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.FieldInvalid(fe.Field(), Message(fe))
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperror.FieldInvalid(typeErr.Field, fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.Kind()))
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperror.Validation("Invalid JSON body")
	}
	return apperror.Validation("%s", err.Error())
}

// Message renders one validator failure the way API clients see it.
func Message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s length must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s length must be less than or equal to %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "email":
		return field + " must be a valid email"
	case "url", "uri":
		return field + " must be a valid uri"
	case "roomtype":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.Join(models.RoomTypes, ", "))
	case "role":
		return fmt.Sprintf("%s must be one of [%s, %s]", field, models.RoleGuest, models.RoleAdmin)
	case "isodate":
		return field + " must be in ISO 8601 date format"
	}
	return fmt.Sprintf("%s is invalid", field)
}
