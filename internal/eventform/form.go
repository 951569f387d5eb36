// Package eventform collects, validates and submits one event's fields.
package eventform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Form is the raw form input. Capacity stays text until Payload coerces it.
type Form struct {
	Name     string `validate:"required"`
	About    string `validate:"required"`
	Location string `validate:"required"`
	Venue    string `validate:"required"`
	Capacity string `validate:"required,number"`
	Scale    string `validate:"required,oneof=public private"`
	StartAt  *time.Time
	EndAt    *time.Time

	Image *backend.File
	// ImageURL is the stored image of an event being edited, shown as the preview.
	ImageURL string
}

// FieldError is one failed constraint.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

// ValidationErrors is returned by Validate when any constraint fails.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// FromEvent pre-fills a form for editing.
func FromEvent(e backend.Event) Form {
	return Form{
		Name:     e.Name,
		About:    e.About,
		Location: e.Location,
		Venue:    e.Venue,
		Capacity: strconv.Itoa(e.Capacity),
		Scale:    string(e.Scale),
		StartAt:  e.StartAt,
		EndAt:    e.EndAt,
		ImageURL: e.ProfileImage,
	}
}

func (f *Form) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.About = strings.TrimSpace(f.About)
	f.Location = strings.TrimSpace(f.Location)
	f.Venue = strings.TrimSpace(f.Venue)
	f.Capacity = strings.TrimSpace(f.Capacity)
	if f.Scale == "" {
		f.Scale = string(backend.ScalePublic)
	}
}

// Validate applies the required and number constraints of the form inputs.
func (f *Form) Validate() error {
	f.normalize()

	var errs ValidationErrors
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate form: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, FieldError{Field: strings.ToLower(fe.Field()), Msg: message(fe)})
		}
	}

	if f.StartAt != nil && f.EndAt != nil && f.EndAt.Before(*f.StartAt) {
		errs = append(errs, FieldError{Field: "endat", Msg: "must not be before the start date"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Payload validates the form and coerces it to the backend's wire shape.
func (f *Form) Payload() (backend.EventPayload, error) {
	if err := f.Validate(); err != nil {
		return backend.EventPayload{}, err
	}

	capacity, err := strconv.Atoi(f.Capacity)
	if err != nil {
		return backend.EventPayload{}, ValidationErrors{{Field: "capacity", Msg: "must be a number"}}
	}

	return backend.EventPayload{
		Name:     f.Name,
		About:    f.About,
		Location: f.Location,
		Venue:    f.Venue,
		Capacity: capacity,
		Scale:    backend.Scale(f.Scale),
		StartAt:  f.StartAt,
		EndAt:    f.EndAt,
		Image:    f.Image,
	}, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "number":
		return "must be a non-negative whole number"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
