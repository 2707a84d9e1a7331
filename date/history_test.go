package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Appending in reverse order must keep the history sorted.
	h.Append(d1, v1)
	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Fatalf("Len() = %v want 2", h.Len())
	}
	if h.days[0] != d2 || h.days[1] != d1 {
		t.Errorf("days = %v want [%v %v]", h.days, d2, d1)
	}
	if h.values[0] != v2 || h.values[1] != v1 {
		t.Errorf("values = %v want [%v %v]", h.values, v2, v1)
	}

	h.Append(d1, "overwritten")
	if v, _ := h.Get(d1); v != "overwritten" || h.Len() != 2 {
		t.Errorf("Append() on an existing day = %q (len %d), want overwritten value", v, h.Len())
	}
}

func TestValueAsOf(t *testing.T) {
	h := new(History[float64])
	h.Append(New(2025, 1, 10), 10).Append(New(2025, 1, 20), 20)

	testCases := []struct {
		on     Date
		want   float64
		wantOk bool
	}{
		{New(2025, 1, 9), 0, false},
		{New(2025, 1, 10), 10, true},
		{New(2025, 1, 15), 10, true},
		{New(2025, 1, 20), 20, true},
		{New(2025, 3, 1), 20, true},
	}
	for _, tc := range testCases {
		got, ok := h.ValueAsOf(tc.on)
		if got != tc.want || ok != tc.wantOk {
			t.Errorf("ValueAsOf(%v) = %v, %v want %v, %v", tc.on, got, ok, tc.want, tc.wantOk)
		}
	}
	if day, v := h.Latest(); day != New(2025, 1, 20) || v != 20 {
		t.Errorf("Latest() = %v, %v", day, v)
	}
}
