// Package match aligns a growing live performance buffer against a fixed
// expectation score, producing Match records and a list of live notes the
// matcher chose not to pair with anything.
package match

import "accompanist/pkg/score"

// Match pairs one live note-on with one expectation-score note-on, along
// with the stretch factor estimated at the moment the pair was formed and
// the velocities captured from both sides.
type Match struct {
	ScoreIndex    score.ScoreIndex
	LiveIndex     score.LiveIndex
	StretchFactor float64
	ScoreVelocity score.Velocity
	LiveVelocity  score.Velocity
}

// Follower is the capability set both matchers implement: an append-only
// consumer of live notes that produces append-only matches and ignored
// indices. Neither matcher exposes more than this; callers never need to
// know which concrete algorithm they're driving.
type Follower interface {
	// PushLive appends a live note to the follower's buffer and returns
	// its index.
	PushLive(note score.LiveNote) score.LiveIndex

	// Follow processes every live note pushed since the last call (or
	// since construction) and returns the matches and ignored indices
	// produced by this call only. It also appends them to the
	// follower's running history.
	Follow() (newMatches []Match, newIgnored []score.LiveIndex)

	// LastMatch returns the most recent match, if any.
	LastMatch() (Match, bool)

	// Matches returns every match produced so far, in order.
	Matches() []Match

	// Ignored returns every ignored live index so far, in order.
	Ignored() []score.LiveIndex
}
