package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a (month, year) pair used by the monthly views.
type Period struct {
	Year  int
	Month time.Month
}

// MonthNames lists the twelve month labels in calendar order.
var MonthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func NewPeriod(year int, month time.Month) (Period, error) {
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	if year < 1000 || year > 9999 {
		return Period{}, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return Period{Year: year, Month: month}, nil
}

// CurrentPeriod returns the period containing now.
func CurrentPeriod() Period {
	now := time.Now()
	return Period{Year: now.Year(), Month: now.Month()}
}

// ParsePeriod accepts a month as a name ("July") or a number ("7") and a
// four digit year.
func ParsePeriod(month, year string) (Period, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return Period{}, err
	}
	if err := ValidateYear(year); err != nil {
		return Period{}, err
	}
	y, _ := strconv.Atoi(strings.TrimSpace(year))
	return NewPeriod(y, m)
}

// MonthName is the stored form of the month on budgets.
func (p Period) MonthName() string {
	return p.Month.String()
}

// YearString is the stored form of the year on budgets.
func (p Period) YearString() string {
	return fmt.Sprintf("%04d", p.Year)
}

// Range returns the half-open date interval [first day, first day of the
// following month). December rolls over into January of the next year.
func (p Period) Range() (from, to Date) {
	from = NewDate(p.Year, p.Month, 1)
	to = Date{Time: from.AddDate(0, 1, 0)}
	return from, to
}

// Contains reports whether d falls within the period.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// ParseMonth accepts a full or three letter English month name, case
// insensitive, or a number between 1 and 12.
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
		}
		return time.Month(n), nil
	}
	for i, name := range MonthNames {
		if strings.EqualFold(s, name) || (len(s) == 3 && strings.EqualFold(s, name[:3])) {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
}

// ParseMonthName accepts only the exact stored month names.
func ParseMonthName(s string) (time.Month, error) {
	for i, name := range MonthNames {
		if s == name {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
}

func ValidateYear(s string) error {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return fmt.Errorf("%w: %q", ErrInvalidYear, s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %q", ErrInvalidYear, s)
		}
	}
	return nil
}
