package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: New(2025, time.July, 1)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: "01/07/2025", want: New(2025, time.July, 1)},
		{in: "1/7/2025", want: New(2025, time.July, 1)},
		{in: "2025-13-01", wantErr: true},
		{in: "yesterday", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNew_Normalizes(t *testing.T) {
	if got, want := New(2025, time.February, 30), New(2025, time.March, 2); got != want {
		t.Errorf("New(2025, Feb, 30) = %v, want %v", got, want)
	}
	if got, want := New(2025, time.January, 0), New(2024, time.December, 31); got != want {
		t.Errorf("New(2025, Jan, 0) = %v, want %v", got, want)
	}
}

func TestStartOfEndOf(t *testing.T) {
	d := New(2025, time.August, 13) // a Wednesday
	testCases := []struct {
		period    Period
		wantStart Date
		wantEnd   Date
	}{
		{Daily, d, d},
		{Weekly, New(2025, time.August, 11), New(2025, time.August, 17)},
		{Monthly, New(2025, time.August, 1), New(2025, time.August, 31)},
		{Quarterly, New(2025, time.July, 1), New(2025, time.September, 30)},
		{Yearly, New(2025, time.January, 1), New(2025, time.December, 31)},
	}
	for _, tc := range testCases {
		t.Run(tc.period.String(), func(t *testing.T) {
			if got := d.StartOf(tc.period); got != tc.wantStart {
				t.Errorf("StartOf(%v) = %v, want %v", tc.period, got, tc.wantStart)
			}
			if got := d.EndOf(tc.period); got != tc.wantEnd {
				t.Errorf("EndOf(%v) = %v, want %v", tc.period, got, tc.wantEnd)
			}
		})
	}
}

func TestAddMonthAndDaysInMonth(t *testing.T) {
	d := New(2024, time.January, 31)
	if got, want := d.AddMonth(1), New(2024, time.February, 1); got != want {
		t.Errorf("AddMonth(1) = %v, want %v", got, want)
	}
	if got := New(2024, time.February, 10).DaysInMonth(); got != 29 {
		t.Errorf("DaysInMonth(2024-02) = %d, want 29", got)
	}
	if got := New(2025, time.February, 10).DaysInMonth(); got != 28 {
		t.Errorf("DaysInMonth(2025-02) = %d, want 28", got)
	}
}

func TestDate_JSON(t *testing.T) {
	d := New(2025, time.March, 9)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `"2025-03-09"` {
		t.Errorf("Marshal() = %s, want %q", b, "2025-03-09")
	}
	var got Date
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != d {
		t.Errorf("Unmarshal() = %v, want %v", got, d)
	}
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{"day": Daily, "Weekly": Weekly, "month": Monthly, "quarterly": Quarterly, "YEAR": Yearly} {
		got, err := ParsePeriod(in)
		if err != nil || got != want {
			t.Errorf("ParsePeriod(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParsePeriod("fortnight"); err == nil {
		t.Errorf("ParsePeriod(fortnight) expected an error")
	}
	if got := Monthly.String(); got != "monthly" {
		t.Errorf("Monthly.String() = %q, want monthly", got)
	}
	if got := Period(9).String(); got != "Period(9)" {
		t.Errorf("Period(9).String() = %q", got)
	}
}

func TestRange_Identifier(t *testing.T) {
	testCases := []struct {
		r    Range
		want string
	}{
		{NewRange(New(2025, 9, 8), Daily), "2025-09-08"},
		{NewRange(New(2025, 9, 8), Weekly), "2025-W37"},
		{NewRange(New(2025, 9, 8), Monthly), "2025-09"},
		{NewRange(New(2025, 9, 8), Quarterly), "2025-Q3"},
		{NewRange(New(2025, 9, 8), Yearly), "2025"},
		{Range{From: New(2025, 9, 2), To: New(2025, 9, 5)}, "2025-09-02_2025-09-05"},
	}
	for _, tc := range testCases {
		if got := tc.r.Identifier(); got != tc.want {
			t.Errorf("Identifier(%v) = %q, want %q", tc.r, got, tc.want)
		}
	}
}
