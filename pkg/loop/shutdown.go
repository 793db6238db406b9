package loop

import "sync/atomic"

// Shutdown is the only process-wide state in the system: a flag set by
// the signal handler and polled once per loop iteration.
type Shutdown struct {
	flag atomic.Bool
}

// Request marks the session for shutdown. Safe to call from a signal
// handler goroutine.
func (s *Shutdown) Request() {
	s.flag.Store(true)
}

// Requested reports whether shutdown has been requested.
func (s *Shutdown) Requested() bool {
	return s.flag.Load()
}

// AllSoundOff builds, for every one of the 16 MIDI channels, a Control
// Change message (controller 120, value 0) that silences all sounding
// notes on that channel.
func AllSoundOff() [][]byte {
	messages := make([][]byte, 16)
	for channel := 0; channel < 16; channel++ {
		messages[channel] = []byte{0xB0 | byte(channel), 120, 0}
	}
	return messages
}
