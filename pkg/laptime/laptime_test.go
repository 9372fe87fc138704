package laptime

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"Zero", "0:00.000", 0.0},
		{"MinutesSeconds", "1:23.456", 83.456},
		{"WithHours", "1:02:03.789", 3723.789},
		{"AlreadyNumeric", "83.456", 83.456},
		{"Whitespace", " 1:23.456 ", 83.456},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.input); got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_Missing(t *testing.T) {
	for _, input := range []string{"", "   ", "not-a-time", "1:2:3:4", "xx:yy.zzz"} {
		if got := Parse(input); !math.IsNaN(got) {
			t.Errorf("Parse(%q) = %v, want NaN", input, got)
		}
	}
}

func TestParse_Idempotent(t *testing.T) {
	once := Parse("1:23.456")
	twice := Parse(Format(once))
	if once != twice {
		t.Errorf("re-parsing formatted value: got %v, want %v", twice, once)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"Zero", 0.0, "0:00.000"},
		{"MinutesSeconds", 83.456, "1:23.456"},
		{"WithHours", 3723.789, "1:02:03.789"},
		{"Missing", math.NaN(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.seconds); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestRound3(t *testing.T) {
	if got := Round3(81.23456); got != 81.235 {
		t.Errorf("Round3(81.23456) = %v, want 81.235", got)
	}
	if got := Round3(math.NaN()); !math.IsNaN(got) {
		t.Errorf("Round3(NaN) = %v, want NaN", got)
	}
}
