// Package playback maps the performer's estimated position in the
// expectation score onto the playback (accompaniment) score, emitting
// due events with velocities mirrored from the live performance.
package playback

import (
	"fmt"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"accompanist/pkg/match"
	"accompanist/pkg/score"
	"accompanist/pkg/tempo"
)

// IdleWait is returned once the playback score is exhausted: only live
// input can cause further work, so the loop need not wake on a timer.
const IdleWait = time.Hour

// ReentryWait is returned in the (should-not-occur-except-at-equality)
// case where the next event's score time has already been passed.
const ReentryWait = 10 * time.Millisecond

// Scheduler walks a playback score forward as the estimated score time
// advances, emitting every event whose time has come due.
type Scheduler struct {
	playback score.PlaybackScore
	head     int
	delay    time.Duration
}

// NewScheduler builds a scheduler over a playback score, starting at its
// first event. delay is a fixed scheduling bias added to elapsed wall
// time before it is projected into score time.
func NewScheduler(playback score.PlaybackScore, delay time.Duration) *Scheduler {
	return &Scheduler{playback: playback, delay: delay}
}

// EstimateScoreTime projects wall-clock time now into the expectation
// score's time domain, anchored at the most recent match's live and
// score timestamps and the stretch factor estimated at that match.
func EstimateScoreTime(now time.Duration, prevMatch match.Match, expectation score.Score, live []score.LiveNote, stretchFactor float64, delay time.Duration) (time.Duration, error) {
	prevLiveTime := live[prevMatch.LiveIndex].Time
	prevScoreTime := expectation[prevMatch.ScoreIndex].Time

	dt := now - prevLiveTime
	if dt < 0 {
		return 0, fmt.Errorf("playback: temporal violation, now (%v) precedes last match's live time (%v)", now, prevLiveTime)
	}
	dts := tempo.Stretch(dt+delay, 1.0/stretchFactor)
	return prevScoreTime + dts, nil
}

// Advance emits every not-yet-emitted playback event whose score time is
// at or before ts, rewriting note-on velocities to liveVelocity, and
// returns how long to wait before the next wake.
func (s *Scheduler) Advance(ts time.Duration, stretchFactor float64, liveVelocity score.Velocity, emit func(score.ScoreEvent) error) (time.Duration, error) {
	for s.head < len(s.playback) && s.playback[s.head].Time <= ts {
		event := s.playback[s.head]
		rewritten := RewriteVelocity(midi.Message(event.Message), liveVelocity)
		if err := emit(score.ScoreEvent{Time: event.Time, Message: []byte(rewritten)}); err != nil {
			return 0, err
		}
		s.head++
	}

	if s.head >= len(s.playback) {
		return IdleWait, nil
	}

	tsNext := s.playback[s.head].Time
	if tsNext < ts {
		return ReentryWait, nil
	}
	return tempo.Stretch(tsNext-ts, stretchFactor), nil
}

// Step combines EstimateScoreTime and Advance into the single operation
// the event loop performs on each playback-timer wake.
func (s *Scheduler) Step(now time.Time, sessionStart time.Time, prevMatch match.Match, expectation score.Score, live []score.LiveNote, stretchFactor float64, liveVelocity score.Velocity, emit func(score.ScoreEvent) error) (time.Duration, error) {
	ts, err := EstimateScoreTime(now.Sub(sessionStart), prevMatch, expectation, live, stretchFactor, s.delay)
	if err != nil {
		return 0, err
	}
	return s.Advance(ts, stretchFactor, liveVelocity, emit)
}

// Head reports the index of the next event to be considered for emission.
func (s *Scheduler) Head() int { return s.head }

// Total reports the number of events in the playback score.
func (s *Scheduler) Total() int { return len(s.playback) }

// Done reports whether every playback event has been emitted.
func (s *Scheduler) Done() bool { return s.head >= len(s.playback) }
