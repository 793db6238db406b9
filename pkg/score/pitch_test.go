package score

import "testing"

func TestPitchName(t *testing.T) {
	tests := []struct {
		pitch Pitch
		want  string
	}{
		{0, "C-3"},
		{1, "C#-3"},
		{11, "H-3"},
		{12, "C-2"},
		{23, "H-2"},
		{24, "C-1"},
		{35, "H-1"},
		{36, "C"},
		{38, "D"},
		{47, "H"},
		{48, "c"},
		{50, "d"},
		{59, "h"},
		{60, "C1"},
		{62, "D1"},
		{64, "E1"},
		{71, "H1"},
		{72, "C2"},
		{84, "C3"},
		{96, "C4"},
		{108, "C5"},
		{120, "C6"},
		{127, "G6"},
	}
	for _, tt := range tests {
		if got := PitchName(tt.pitch); got != tt.want {
			t.Errorf("PitchName(%d) = %q, want %q", tt.pitch, got, tt.want)
		}
	}
}
