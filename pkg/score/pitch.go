package score

import "fmt"

var noteNames = [12]string{
	"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "B", "H",
}

var noteNamesLower = [12]string{
	"c", "c#", "d", "eb", "e", "f", "f#", "g", "ab", "a", "b", "h",
}

var octaves = [11]struct {
	suffix string
	lower  bool
}{
	{"-3", false}, // 0
	{"-2", false}, // 12
	{"-1", false}, // 24
	{"", false},   // 36
	{"", true},    // 48
	{"1", false},  // 60
	{"2", false},  // 72
	{"3", false},  // 84
	{"4", false},  // 96
	{"5", false},  // 108
	{"6", false},  // 120
}

// PitchName renders a pitch in the German-style octave naming this project
// has always used: middle C (60) is "C1", the octave below (48) is "c" and
// the one below that (36) is "C", both without a digit; B (pitch class 11)
// is "H" rather than "B".
func PitchName(p Pitch) string {
	pitchClass := int(p) % 12
	oct := octaves[int(p)/12]
	if oct.lower {
		return fmt.Sprintf("%s%s", noteNamesLower[pitchClass], oct.suffix)
	}
	return fmt.Sprintf("%s%s", noteNames[pitchClass], oct.suffix)
}
