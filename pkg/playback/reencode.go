package playback

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"

	"accompanist/pkg/score"
)

// RewriteVelocity substitutes liveVelocity into an outgoing note-on
// message that carries a non-zero velocity. Note-off messages,
// zero-velocity note-ons (used as note-offs), and non-note messages pass
// through unchanged.
//
// Note On: status byte 0x9n, n = channel, followed by key and velocity.
func RewriteVelocity(msg midi.Message, liveVelocity score.Velocity) midi.Message {
	raw := []byte(msg)
	if len(raw) < 3 {
		return msg
	}
	status, key, velocity := raw[0], raw[1], raw[2]
	if status >= 0x90 && status <= 0x9F && velocity != 0 {
		return midi.NoteOn(status-0x90, key, uint8(liveVelocity))
	}
	return msg
}

// Encode returns the wire bytes for a MIDI message. It fails only if the
// message carries no bytes at all, which should never happen for a
// message produced by this package's constructors.
func Encode(msg midi.Message) ([]byte, error) {
	raw := []byte(msg)
	if len(raw) == 0 {
		return nil, fmt.Errorf("playback: message %v has no wire representation", msg)
	}
	return raw, nil
}
