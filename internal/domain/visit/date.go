package visit

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date with no time-of-day component. It marshals to
// "2006-01-02" and always round-trips to the same calendar date regardless
// of the server timezone.
type Date struct {
	t time.Time
}

// NewDate builds a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate accepts the canonical "2006-01-02" form. Full RFC 3339
// timestamps are also accepted and truncated, since earlier clients
// persisted dates that way.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t.UTC()), nil
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

func (d Date) String() string {
	return d.t.Format("2006-01-02")
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Equal(o Date) bool {
	return d.t.Equal(o.t)
}

func (d Date) Before(o Date) bool {
	return d.t.Before(o.t)
}

func (d Date) After(o Date) bool {
	return d.t.After(o.t)
}

// Date returns the year, month, and day components.
func (d Date) Date() (int, time.Month, int) {
	return d.t.Date()
}

// Time returns the underlying instant (midnight UTC).
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AgeOn returns the whole years elapsed from birth to the given date.
func AgeOn(birth, on Date) int {
	by, bm, bd := birth.Date()
	oy, om, od := on.Date()
	age := oy - by
	if om < bm || (om == bm && od < bd) {
		age--
	}
	return age
}
