// Package ingest turns external score representations — Standard MIDI
// Files and, optionally, ABC notation — into the score model the
// matchers and scheduler operate on.
package ingest

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"

	"accompanist/pkg/score"
)

// defaultMicrosecondsPerQuarter is the MIDI-standard default tempo
// (120 BPM) assumed until the first tempo meta event is seen.
const defaultMicrosecondsPerQuarter = 500000

// LoadExpectation reads a type 0/1 Standard MIDI File and returns its
// note-on events (velocity > 0) as an expectation score, filtered by the
// given (track, channel) selectors. An empty selector list accepts every
// track and channel.
func LoadExpectation(path string, selectors []score.ChannelSpec) (score.Score, error) {
	events, err := load(path, selectors)
	if err != nil {
		return nil, err
	}
	var notes score.Score
	for _, ev := range events {
		status, key, velocity := ev.Message[0], ev.Message[1], ev.Message[2]
		if status < 0x90 || status > 0x9F || velocity == 0 {
			continue
		}
		notes = append(notes, score.ScoreNote{
			Time:     ev.Time,
			Pitch:    score.Pitch(key),
			Velocity: score.Velocity(velocity),
		})
	}
	return notes, nil
}

// LoadPlayback reads a type 0/1 Standard MIDI File and returns every
// three-byte channel message (not just note-ons) as a playback score,
// filtered by the same (track, channel) selectors. Two-byte channel
// messages (program change, channel pressure), meta events and sysex are
// not included.
func LoadPlayback(path string, selectors []score.ChannelSpec) (score.PlaybackScore, error) {
	return load(path, selectors)
}

// load merges every track into a single cumulative-tick timeline,
// tracking tempo from 0xFF 0x51 0x03 meta events exactly as they are
// encountered, and converts ticks to wall-clock duration.
func load(path string, selectors []score.ChannelSpec) (score.PlaybackScore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ingest: parse %s: %w", path, err)
	}

	ticksPerQuarter := uint16(960)
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		ticksPerQuarter = mt.Resolution()
	}

	microsecondsPerQuarter := uint32(defaultMicrosecondsPerQuarter)
	var events score.PlaybackScore

	for trackIndex, track := range s.Tracks {
		var currentTick int64
		for _, ev := range track {
			currentTick += int64(ev.Delta)
			msg := ev.Message

			if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
				value := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if value > 0 {
					microsecondsPerQuarter = value
				}
				continue
			}
			if len(msg) < 3 || msg[0] >= 0xF0 {
				continue // meta and sysex events carry no channel and never play back
			}

			channel := int(msg[0] & 0x0F)
			if !accepts(selectors, trackIndex, channel) {
				continue
			}

			micros := currentTick * int64(microsecondsPerQuarter) / int64(ticksPerQuarter)
			events = append(events, score.ScoreEvent{
				Time:    time.Duration(micros) * time.Microsecond,
				Message: append([]byte(nil), msg...),
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Time < events[j].Time })
	return events, nil
}

func accepts(selectors []score.ChannelSpec, track, channel int) bool {
	if len(selectors) == 0 {
		return true
	}
	for _, sel := range selectors {
		if sel.Track == track && sel.Channels[channel] {
			return true
		}
	}
	return false
}
