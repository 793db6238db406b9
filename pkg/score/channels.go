package score

import (
	"fmt"
	"strconv"
	"strings"
)

// ChannelSpec selects, for one track of a Standard MIDI File, which
// channels should be read from or written to. Both Track and the members
// of Channels are 0-based internally even though the CLI syntax and the
// file format itself are 1-based.
type ChannelSpec struct {
	Track    int
	Channels map[int]bool
}

// ParseChannelSpec parses the "track:ch[,ch...]" syntax used by
// --input-channels/--output-channels. The track prefix is optional and
// defaults to track 1. Channels are given 1..16 and converted to 0..15.
func ParseChannelSpec(s string) (ChannelSpec, error) {
	trackPart, chanPart, hasTrack := cutOnce(s, ":")
	if !hasTrack {
		chanPart = trackPart
		trackPart = "1"
	}

	track, err := strconv.Atoi(strings.TrimSpace(trackPart))
	if err != nil {
		return ChannelSpec{}, fmt.Errorf("invalid track %q in channel spec %q: %w", trackPart, s, err)
	}
	if track < 1 {
		return ChannelSpec{}, fmt.Errorf("invalid track %d in channel spec %q: track is 1-based", track, s)
	}

	channels := make(map[int]bool)
	for _, field := range strings.Split(chanPart, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			return ChannelSpec{}, fmt.Errorf("empty channel in channel spec %q", s)
		}
		ch, err := strconv.Atoi(field)
		if err != nil {
			return ChannelSpec{}, fmt.Errorf("invalid channel %q in channel spec %q: %w", field, s, err)
		}
		if ch < 1 || ch > 16 {
			return ChannelSpec{}, fmt.Errorf("channel %d out of range 1..16 in channel spec %q", ch, s)
		}
		channels[ch-1] = true
	}

	return ChannelSpec{Track: track - 1, Channels: channels}, nil
}

// cutOnce splits s on the first occurrence of sep, trimming surrounding
// whitespace from both halves. The bool result reports whether sep was
// found at all.
func cutOnce(s, sep string) (before, after string, found bool) {
	i := strings.Index(s, sep)
	if i < 0 {
		return strings.TrimSpace(s), "", false
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):]), true
}
