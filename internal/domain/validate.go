package domain

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks an activity: a description and a non-negative cost.
func (a Activity) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Description, validation.Required),
		validation.Field(&a.Cost, validation.Min(0.0)),
	)
}

// Validate checks every activity of the block.
func (b TimeBlock) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Activities),
	)
}

// Validate checks that a day carries all three time-blocks.
func (d Day) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.DayNumber, validation.Min(1)),
		validation.Field(&d.Morning, validation.Required),
		validation.Field(&d.Afternoon, validation.Required),
		validation.Field(&d.Evening, validation.Required),
	)
}

// Validate checks the shape of an itinerary before it is persisted.
func (it Itinerary) Validate() error {
	return validation.ValidateStruct(&it,
		validation.Field(&it.OwnerUserID, validation.Required),
		validation.Field(&it.Destination, validation.Required),
		validation.Field(&it.Duration, validation.Required),
		validation.Field(&it.Days, validation.Required, validation.By(contiguousDays)),
	)
}

// contiguousDays enforces day numbers 1..N in order.
func contiguousDays(value interface{}) error {
	days, ok := value.([]Day)
	if !ok {
		return nil
	}
	for i, d := range days {
		if d.DayNumber != i+1 {
			return fmt.Errorf("day numbers must be unique and contiguous from 1 (position %d has day %d)", i+1, d.DayNumber)
		}
	}
	return nil
}

// AsValidationError converts ozzo validation errors into a *ValidationError.
// Any other error is returned unchanged; nil stays nil.
func AsValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	var fields []FieldError
	flattenErrors("", errs, &fields)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &ValidationError{Errors: fields}
}

func flattenErrors(prefix string, errs validation.Errors, out *[]FieldError) {
	for key, err := range errs {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		var nested validation.Errors
		if errors.As(err, &nested) {
			flattenErrors(path, nested, out)
			continue
		}
		*out = append(*out, FieldError{Field: path, Message: err.Error()})
	}
}
