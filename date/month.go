package date

import (
	"fmt"
	"time"
)

// YearMonth identifies a calendar month. It is the bucket key of monthly
// reports and orders naturally by Year then Month.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the calendar month containing d.
func MonthOf(d Date) YearMonth { return YearMonth{Year: d.Year(), Month: d.Month()} }

// First returns the first day of the month.
func (m YearMonth) First() Date { return New(m.Year, m.Month, 1) }

// Last returns the last day of the month.
func (m YearMonth) Last() Date { return New(m.Year, m.Month+1, 0) }

// Next returns the following month.
func (m YearMonth) Next() YearMonth { return MonthOf(m.First().AddMonth(1)) }

// Prev returns the preceding month.
func (m YearMonth) Prev() YearMonth { return MonthOf(m.First().AddMonth(-1)) }

// Before reports whether m is strictly before n.
func (m YearMonth) Before(n YearMonth) bool {
	return m.Year < n.Year || (m.Year == n.Year && m.Month < n.Month)
}

// After reports whether m is strictly after n.
func (m YearMonth) After(n YearMonth) bool { return n.Before(m) }

// Range returns the range covering the whole month.
func (m YearMonth) Range() Range { return Range{From: m.First(), To: m.Last()} }

// String formats the month as "2006-01".
func (m YearMonth) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }
