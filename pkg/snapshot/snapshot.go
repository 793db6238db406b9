// Package snapshot publishes read-only copies of a running session's
// state for observers — the status API and the session TUI — that must
// never be able to block the event loop that produces them.
package snapshot

import (
	"sync"
	"time"

	"accompanist/pkg/match"
	"accompanist/pkg/score"
)

// Snapshot is a point-in-time copy of everything an observer needs to
// render a session: the matcher's position, the playback scheduler's
// head, and running counts. It carries no references into the loop's
// live state, so holding one after the loop has moved on is safe.
type Snapshot struct {
	Time time.Time

	HasMatch      bool
	MatchScore    score.ScoreIndex
	MatchLive     score.LiveIndex
	StretchFactor float64
	LiveVelocity  score.Velocity

	MatchCount   int
	IgnoredCount int

	PlaybackHead  int
	PlaybackTotal int
	Emitted       int
}

// FromMatch builds a Snapshot's matcher-derived fields from the
// follower's current state.
func FromMatch(f match.Follower) (hasMatch bool, m match.Match, matchCount, ignoredCount int) {
	last, ok := f.LastMatch()
	return ok, last, len(f.Matches()), len(f.Ignored())
}

// subscriberCapacity bounds each subscriber's queue. Once full, Publish
// drops the oldest pending snapshot rather than block — a subscriber
// only ever needs the most recent state, not every intermediate one.
const subscriberCapacity = 4

// Store holds the latest Snapshot and fans it out to any number of
// subscribers, none of which can apply backpressure to the publisher.
type Store struct {
	mu     sync.Mutex
	latest Snapshot
	subs   map[chan Snapshot]struct{}
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{subs: make(map[chan Snapshot]struct{})}
}

// Publish records snap as the latest state and delivers it to every
// subscriber, dropping that subscriber's oldest queued snapshot first if
// its channel is full.
func (st *Store) Publish(snap Snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.latest = snap
	for ch := range st.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// Latest returns the most recently published Snapshot, or the zero value
// if none has been published yet.
func (st *Store) Latest() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.latest
}

// Subscribe registers a new observer and returns a channel of snapshots
// plus a function to unregister it. Callers must call the cancel
// function when done watching.
func (st *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, subscriberCapacity)
	st.mu.Lock()
	st.subs[ch] = struct{}{}
	st.mu.Unlock()

	cancel := func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		if _, ok := st.subs[ch]; ok {
			delete(st.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}
