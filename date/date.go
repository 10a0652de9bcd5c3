// Package date provides a day-granular Date type and a chronological History of
// values indexed by Date.
package date

import (
	"fmt"
	"time"
)

const (
	// DateFormat is the ISO-8601 layout dates are written with.
	DateFormat = "2006-01-02"
	// CompactFormat is the layout of rate table days, e.g. 20240105.
	CompactFormat = "20060102"

	lenientFormat = "2006-1-2" // also accepts single digit months and days
)

// Date is a calendar day, without time or location. The zero value is the
// zero Date, see IsZero.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns the Date for year, month and day, normalized like time.Date
// does: New(2024, 12, 32) is 2025-01-01.
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// Of returns the calendar day of t, in t's own location.
func Of(t time.Time) Date { return New(t.Date()) }

// time is the canonical instant of d: midnight UTC.
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }
func (d Date) IsZero() bool      { return d == Date{} }

// Add returns d shifted by days, which may be negative.
func (d Date) Add(days int) Date { return New(d.y, d.m, d.d+days) }

// Compare returns -1, 0 or +1 whether d is before, the same day or after x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }
func (d Date) After(x Date) bool  { return d.Compare(x) > 0 }

// String returns d in DateFormat, the zero Date is "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(DateFormat)
}

func parse(layout, str string) (Date, error) {
	on, err := time.Parse(layout, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, layout, err)
	}
	return Of(on), nil
}

// Parse parses a "YYYY-MM-DD" day, single digit months and days are accepted.
func Parse(str string) (Date, error) { return parse(lenientFormat, str) }

// ParseCompact parses a "YYYYMMDD" day.
func ParseCompact(str string) (Date, error) { return parse(CompactFormat, str) }

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err)
	}
	return d
}

// MarshalText writes d in DateFormat, so that dates are JSON strings.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText reads a Date written by MarshalText, "" is the zero Date.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	var err error
	*d, err = Parse(string(text))
	return err
}
