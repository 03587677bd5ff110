package routine

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"07:30", 450, false},
		{"23:59", 1439, false},
		{" 08:15 ", 495, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default routine must validate: %v", err)
	}

	bad := Default()
	bad.Dinner = "26:00"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected validation error for bad dinner time")
	}
}

func TestOnResolvesDate(t *testing.T) {
	r := Routine{Wake: "07:00", Bedtime: "23:00", Breakfast: "08:00", Lunch: "12:30", Dinner: "18:30"}
	day := time.Date(2024, 1, 1, 15, 42, 0, 0, time.UTC)

	dt, err := r.On(day)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC); !dt.Wake.Equal(want) {
		t.Errorf("Wake = %s, want %s", dt.Wake, want)
	}
	if want := time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC); !dt.Dinner.Equal(want) {
		t.Errorf("Dinner = %s, want %s", dt.Dinner, want)
	}
}
