package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"techsupport/internal/errs"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04"
	dateTimeLayout = dateLayout + " " + timeLayout
)

// Form inputs arrive as text. An empty field means "absent" and parses to
// nil, never to a zero value.

func optionalDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, errs.Validation(field, field+" must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}

func optionalInt(field, value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, errs.Validation(field, field+" must be a whole number")
	}
	return &n, nil
}

func optionalID(field, value string) (*uint, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil || n == 0 {
		return nil, errs.Validation(field, field+" must be a valid id")
	}
	id := uint(n)
	return &id, nil
}

func requiredInt(field, value string) (int, error) {
	n, err := optionalInt(field, value)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, errs.Validation(field, field+" is required")
	}
	return *n, nil
}

func optionalDecimal(field, value string) (decimal.NullDecimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, errs.Validation(field, field+" must be a decimal number")
	}
	return decimal.NewNullDecimal(d), nil
}

// appointmentAt joins the separate date and time inputs of the ticket form.
func appointmentAt(date, clock string) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, errs.Validation("appointment_date", "appointment date and time are required")
	}
	t, err := time.Parse(dateTimeLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, errs.Validation("appointment_date", "appointment date/time must be YYYY-MM-DD and HH:MM")
	}
	return t, nil
}
