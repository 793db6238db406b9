// Package midiio selects MIDI input/output ports and wires the library's
// callback-based input subsystem to a channel the event loop can select
// on.
package midiio

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"accompanist/pkg/score"
)

// Selector picks a port either by its listed number or by a substring of
// its name. Exactly one field is set; the CLI layer (deviceSelector in
// cmd/accompanist) is responsible for enforcing that.
type Selector struct {
	Number        *int
	NameSubstring *string
}

func (s Selector) matches(index int, name string) bool {
	if s.Number != nil {
		return index == *s.Number
	}
	if s.NameSubstring != nil {
		return strings.Contains(name, *s.NameSubstring)
	}
	return false
}

// SelectInPort resolves a Selector to exactly one input port, erroring
// (and listing every port) if none or more than one match.
func SelectInPort(sel Selector) (drivers.In, error) {
	ports := midi.GetInPorts()
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	idx, err := resolve(names, sel)
	if err != nil {
		return nil, err
	}
	return ports[idx], nil
}

// SelectOutPort resolves a Selector to exactly one output port.
func SelectOutPort(sel Selector) (drivers.Out, error) {
	ports := midi.GetOutPorts()
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	idx, err := resolve(names, sel)
	if err != nil {
		return nil, err
	}
	return ports[idx], nil
}

func resolve(names []string, sel Selector) (int, error) {
	var matched []int
	for i, name := range names {
		if sel.matches(i, name) {
			matched = append(matched, i)
		}
	}
	switch len(matched) {
	case 0:
		return 0, fmt.Errorf("midiio: no matching device\n%s", listPorts(names))
	case 1:
		return matched[0], nil
	default:
		return 0, fmt.Errorf("midiio: multiple matching devices\n%s", listPorts(names))
	}
}

func listPorts(names []string) string {
	var b strings.Builder
	for i, name := range names {
		fmt.Fprintf(&b, "  %d: %s\n", i, name)
	}
	return b.String()
}

// ListenTo opens in and delivers every note-on message it receives, time
// stamped with a monotonic wall clock taken at callback entry, onto the
// returned channel. The callback itself does no work beyond that: it is
// running on the driver's own goroutine and must not block, so a note
// that arrives while the channel's buffer is full is dropped.
func ListenTo(in drivers.In, sessionStart time.Time) (<-chan score.LiveNote, func(), error) {
	ch := make(chan score.LiveNote, 64)
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		now := time.Now()
		raw := []byte(msg)
		if len(raw) < 3 {
			return
		}
		status, key, velocity := raw[0], raw[1], raw[2]
		if status < 0x90 || status > 0x9F || velocity == 0 {
			return
		}
		select {
		case ch <- score.LiveNote{
			Time:     now.Sub(sessionStart),
			Pitch:    score.Pitch(key),
			Velocity: score.Velocity(velocity),
		}:
		default:
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("midiio: listen: %w", err)
	}
	return ch, stop, nil
}

// Writer wraps an output port so callers can send raw wire bytes without
// reaching for the gomidi API directly.
type Writer struct {
	out drivers.Out
}

// NewWriter opens out for sending.
func NewWriter(out drivers.Out) (*Writer, error) {
	if err := out.Open(); err != nil {
		return nil, fmt.Errorf("midiio: open output port: %w", err)
	}
	return &Writer{out: out}, nil
}

// Send writes raw MIDI wire bytes to the output port.
func (w *Writer) Send(raw []byte) error {
	return w.out.Send(raw)
}

// Close releases the output port.
func (w *Writer) Close() error {
	return w.out.Close()
}
