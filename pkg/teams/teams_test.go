package teams

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"RacingPoint", "Racing Point", "Aston Martin"},
		{"AlfaRomeo", "Alfa Romeo", "Kick Sauber"},
		{"AlphaTauri", "Alpha Tauri", "RB"},
		{"Renault", "Renault", "Alpine"},
		{"CurrentName", "Ferrari", "Ferrari"},
		{"Unknown", "Brawn GP", "Brawn GP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, name := range []string{"Racing Point", "Aston Martin", "Alpha Tauri", "Williams"} {
		once := Normalize(name)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", name, twice, once)
		}
	}
}
