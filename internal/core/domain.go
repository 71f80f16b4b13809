package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Date is a calendar date, normalized to midnight UTC.
	Date struct {
		time.Time
	}

	// TimeOfDay is an optional wall-clock time attached to an injection.
	// The zero value means "not recorded".
	TimeOfDay struct {
		Hour   int
		Minute int
		Set    bool
	}

	// InjectionRecord is one logged injection event. Records are append-only:
	// once written they are never edited or deleted.
	InjectionRecord struct {
		Date   Date
		Time   TimeOfDay
		Dosage Decimal // milligrams
		Weight Decimal // pounds
		Notes  string
	}

	// SideEffectRecord is one logged side-effect event.
	SideEffectRecord struct {
		Date        Date
		Description string
		Severity    string // optional, free text
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidTime      = errors.New("invalid time")
	ErrInvalidDosage    = errors.New("invalid dosage")
	ErrInvalidWeight    = errors.New("invalid weight")
	ErrEmptyDescription = errors.New("empty description")
	ErrTextTooLong      = errors.New("text too long (max 500 characters)")
)

const maxTextLen = 500

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// NewTimeOfDay creates a set TimeOfDay.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute, Set: true}
}

// ParseTimeOfDay parses an HH:MM string. Empty input yields the unset value.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeOfDay{}, nil
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return TimeOfDay{}, ErrInvalidTime
	}
	t := TimeOfDay{Hour: h, Minute: m, Set: true}
	if err := t.Validate(); err != nil {
		return TimeOfDay{}, err
	}
	return t, nil
}

func (t TimeOfDay) Validate() error {
	if !t.Set {
		return nil
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return ErrInvalidTime
	}
	return nil
}

// String formats as HH:MM, or empty when unset.
func (t TimeOfDay) String() string {
	if !t.Set {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (r InjectionRecord) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if err := r.Time.Validate(); err != nil {
		return err
	}
	if r.Dosage.Hundredths <= 0 {
		return ErrInvalidDosage
	}
	if r.Weight.Hundredths <= 0 {
		return ErrInvalidWeight
	}
	if len(r.Notes) > maxTextLen {
		return ErrTextTooLong
	}
	return nil
}

func (r SideEffectRecord) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > maxTextLen {
		return ErrTextTooLong
	}
	if len(r.Severity) > maxTextLen {
		return ErrTextTooLong
	}
	return nil
}
