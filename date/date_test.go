package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCompare(t *testing.T) {
	a, b := New(2025, 7, 31), New(2025, 8, 1)
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(New(2025, 7, 31)) != 0 {
		t.Errorf("Compare(%v, %v) is not ordered", a, b)
	}
	if !a.Before(b) || !b.After(a) || a.After(a) {
		t.Errorf("Before/After(%v, %v) are inconsistent", a, b)
	}
}

func TestNewNormalizes(t *testing.T) {
	got := New(2024, 12, 32)
	if want := New(2025, 1, 1); got != want {
		t.Errorf("New(2024, 12, 32) = %v, want %v", got, want)
	}
	if got := New(2024, 3, 1).Add(-1); got != New(2024, 2, 29) {
		t.Errorf("2024-03-01.Add(-1) = %v, want 2024-02-29", got)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: New(2025, 7, 1)},
		{in: "2025-7-1", want: New(2025, 7, 1)},
		{in: "20250701", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := Parse(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseCompact(t *testing.T) {
	got, err := ParseCompact("20240105")
	if err != nil {
		t.Fatalf("ParseCompact() unexpected error: %v", err)
	}
	if want := New(2024, 1, 5); got != want {
		t.Errorf("ParseCompact() = %v, want %v", got, want)
	}
	if _, err := ParseCompact("2024-01-05"); err == nil {
		t.Errorf("ParseCompact(\"2024-01-05\") expected an error")
	}
}

func TestOf(t *testing.T) {
	on := time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)
	if got := Of(on); got != New(2023, 12, 31) {
		t.Errorf("Of(%v) = %v, want 2023-12-31", on, got)
	}
}

func TestJSON(t *testing.T) {
	d := New(2025, 1, 9)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(b) != `"2025-01-09"` {
		t.Errorf("Marshal() = %s, want \"2025-01-09\"", b)
	}
	var got Date
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got != d {
		t.Errorf("Unmarshal() = %v, want %v", got, d)
	}

	b, err = json.Marshal(struct{ On Date }{})
	if err != nil || string(b) != `{"On":""}` {
		t.Errorf("Marshal(zero) = %s, %v, want {\"On\":\"\"}", b, err)
	}
}
