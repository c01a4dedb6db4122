package store

import (
	"fmt"
	"time"

	"clinic-booking/internal/model"
)

// ParseDate reads an RFC 3339 appointment start and requires it to lie
// strictly after now.
func ParseDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return time.Time{}, model.Invalid("date", "required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, model.Invalid("date", "must be an RFC 3339 timestamp")
	}
	if !t.After(now) {
		return time.Time{}, model.Invalid("date", "must be in the future")
	}
	return t.UTC(), nil
}

// Conflicts reports whether two start times fall inside one conflict window.
func Conflicts(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d < model.ConflictWindow
}

func DoctorBusy(doctorID int64, at time.Time) error {
	return fmt.Errorf("%w: doctor %d has another appointment at %s, within %s",
		model.ErrConflict, doctorID, at.UTC().Format(time.RFC3339), model.ConflictWindow)
}

func DoctorNotFound(doctorID int64) error {
	return fmt.Errorf("%w: doctor %d", model.ErrNotFound, doctorID)
}
