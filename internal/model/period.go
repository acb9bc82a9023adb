package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Period identifies a single accounting month.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewPeriod builds a validated monthly period.
func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks year/month bounds.
func (p Period) Validate() error {
	if p.Year < 2000 || p.Year > 2100 {
		return &DataIntegrityError{Field: "year", Reason: fmt.Sprintf("year %d out of range", p.Year)}
	}
	if p.Month < 1 || p.Month > 12 {
		return &DataIntegrityError{Field: "month", Reason: fmt.Sprintf("month %d out of range", p.Month)}
	}
	return nil
}

// String renders the canonical "YYYY-MM" form used in keys and reports.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Before reports whether p precedes q chronologically.
func (p Period) Before(q Period) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}

// Next returns the following month.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Days returns the number of calendar days in the period.
func (p Period) Days() int {
	switch p.Month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if (p.Year%4 == 0 && p.Year%100 != 0) || p.Year%400 == 0 {
			return 29
		}
		return 28
	}
}

// ParsePeriod parses the canonical "YYYY-MM" form.
func ParsePeriod(s string) (Period, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return Period{}, &DataIntegrityError{Field: "period", Reason: fmt.Sprintf("malformed period %q", s)}
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, &DataIntegrityError{Field: "period", Reason: fmt.Sprintf("malformed period %q", s)}
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, &DataIntegrityError{Field: "period", Reason: fmt.Sprintf("malformed period %q", s)}
	}
	return NewPeriod(year, month)
}
