package ingest

import (
	"bufio"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"accompanist/pkg/score"
)

// defaultNoteLength is the spacing between consecutive notes when no
// rhythm is specified, matching ABC's implicit eighth-note default at a
// moderate tempo.
const defaultNoteLength = 250 * time.Millisecond

// diatonicPitch maps the seven natural note letters, starting at C4, to
// MIDI pitch numbers. Lowercase letters are one octave higher, matching
// ABC's case convention.
var diatonicPitch = map[byte]score.Pitch{
	'C': 60, 'D': 62, 'E': 64, 'F': 65, 'G': 67, 'A': 69, 'B': 71,
}

// headerRank pins the three headers ABC requires in their canonical
// emission order; everything else sorts lexicographically in between.
func headerRank(name byte) int {
	switch name {
	case 'X':
		return 0
	case 'T':
		return 1
	case 'K':
		return 3
	default:
		return 2
	}
}

// normalizeHeaders splits music into its leading "Letter: value" header
// lines and the remaining tune body, fills in defaults for any of X, T,
// K that are missing, and re-emits the headers in canonical order: X
// first, T second, K last, everything else lexicographic in between.
func normalizeHeaders(music string) (string, string) {
	headers := make(map[byte]string)
	scanner := bufio.NewScanner(strings.NewReader(music))
	var bodyLines []string
	inBody := false
	for scanner.Scan() {
		line := scanner.Text()
		if !inBody {
			if name, value, ok := parseHeaderLine(line); ok {
				headers[name] = value
				continue
			}
			inBody = true
		}
		bodyLines = append(bodyLines, line)
	}

	if _, ok := headers['X']; !ok {
		headers['X'] = "1"
	}
	if _, ok := headers['T']; !ok {
		headers['T'] = "test tune"
	}
	if _, ok := headers['K']; !ok {
		headers['K'] = "C"
	}

	names := make([]byte, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := headerRank(names[i]), headerRank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})

	var out strings.Builder
	for _, name := range names {
		fmt.Fprintf(&out, "%c: %s\n", name, headers[name])
	}
	return out.String(), strings.Join(bodyLines, "\n")
}

func parseHeaderLine(line string) (byte, string, bool) {
	if len(line) < 2 || line[1] != ':' {
		return 0, "", false
	}
	name := line[0]
	if !unicode.IsLetter(rune(name)) {
		return 0, "", false
	}
	value := strings.TrimSpace(line[2:])
	return byte(unicode.ToUpper(rune(name))), value, true
}

// ParseABC converts a minimal ABC tune body into an expectation score.
// It supports the seven natural note letters (no accidentals, rhythm
// modifiers, or chords): each produces a note-on one defaultNoteLength
// after the previous one, starting 1ms into the tune. Headers are
// normalized (missing X, T, K filled in) but do not affect the score — this
// is intentionally a small subset of ABC, not a full parser.
func ParseABC(music string) (score.Score, error) {
	_, body := normalizeHeaders(music)

	var notes score.Score
	offset := time.Millisecond
	for i := 0; i < len(body); i++ {
		c := body[i]
		letter := byte(unicode.ToUpper(rune(c)))
		pitch, ok := diatonicPitch[letter]
		if !ok {
			continue
		}
		if unicode.IsLower(rune(c)) {
			pitch += 12
		}
		notes = append(notes, score.ScoreNote{
			Time:     offset,
			Pitch:    pitch,
			Velocity: 100,
		})
		offset += defaultNoteLength
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("ingest: ABC tune has no notes")
	}
	return notes, nil
}
