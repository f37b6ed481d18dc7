package models

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "tradedesk/internal/errors"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims free-text fields and upper-cases the symbol.
func (t *Trade) Normalize() {
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	t.Strategy = strings.TrimSpace(t.Strategy)
	t.Time = strings.TrimSpace(t.Time)
	t.Date = strings.TrimSpace(t.Date)
	if t.Tags == nil {
		t.Tags = []string{}
	}
}

// Validate checks field constraints and rejects weekend-dated trades.
func (t *Trade) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fromValidator(err)
	}
	if _, err := time.Parse(TimeLayout, t.Time); err != nil {
		return apperrors.NewValidationError("time", t.Time, "must be HH:MM")
	}
	wd, err := t.Weekday()
	if err != nil {
		return apperrors.NewValidationError("date", t.Date, "must be YYYY-MM-DD")
	}
	if wd == time.Saturday || wd == time.Sunday {
		return &apperrors.ValidationError{
			Field:   "date",
			Value:   t.Date,
			Message: "markets do not trade on " + wd.String(),
			Err:     apperrors.ErrWeekendTrade,
		}
	}
	return nil
}

// Normalize trims free-text fields and upper-cases the symbol.
func (s *Stock) Normalize() {
	s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
	s.Name = strings.TrimSpace(s.Name)
	if s.Tags == nil {
		s.Tags = []string{}
	}
}

// Validate checks field constraints.
func (s *Stock) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fromValidator(err)
	}
	return nil
}

func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewValidationError(fe.Field(), fe.Value(), "failed '"+fe.Tag()+"' check")
	}
	return apperrors.Wrap(apperrors.ErrInputValidation, err.Error())
}
