// Package loop drives the single cooperative event loop at the center of
// a session: it multiplexes live-note arrivals, the playback timer, and
// shutdown polling, running the match step and the emit step on every
// wake.
package loop

import (
	"fmt"
	"time"

	"accompanist/pkg/match"
	"accompanist/pkg/playback"
	"accompanist/pkg/score"
	"accompanist/pkg/snapshot"
)

// shutdownPollInterval is how often the loop checks the shutdown flag
// when it isn't otherwise woken by input or the playback timer.
const shutdownPollInterval = time.Second

// Loop owns the session state: the live buffer, the matcher and the
// scheduler. It shares only the channel from the MIDI input callback, the
// shutdown flag (set from other goroutines) and the snapshot store (read
// by observers).
type Loop struct {
	liveCh      <-chan score.LiveNote
	matcher     match.Follower
	expectation score.Score
	scheduler   *playback.Scheduler
	write       func([]byte) error
	shutdown    *Shutdown
	snapshots   *snapshot.Store

	sessionStart time.Time
	live         []score.LiveNote
	play         bool
	emitted      int
}

// New builds a Loop. sessionStart anchors every live and score time the
// loop computes for the rest of the session. snapshots may be nil, in
// which case the loop simply never publishes state.
func New(liveCh <-chan score.LiveNote, matcher match.Follower, expectation score.Score, scheduler *playback.Scheduler, write func([]byte) error, shutdown *Shutdown, sessionStart time.Time, snapshots *snapshot.Store) *Loop {
	return &Loop{
		liveCh:       liveCh,
		matcher:      matcher,
		expectation:  expectation,
		scheduler:    scheduler,
		write:        write,
		shutdown:     shutdown,
		sessionStart: sessionStart,
		snapshots:    snapshots,
	}
}

// Run executes the cooperative loop until shutdown is requested or an
// unrecoverable error occurs.
func (l *Loop) Run() error {
	playbackTimer := time.NewTimer(playback.IdleWait)
	defer playbackTimer.Stop()
	shutdownTicker := time.NewTicker(shutdownPollInterval)
	defer shutdownTicker.Stop()

	for {
		if l.play {
			wait, err := l.emitStep()
			if err != nil {
				return err
			}
			l.play = false
			if !playbackTimer.Stop() {
				drainTimer(playbackTimer)
			}
			playbackTimer.Reset(wait)
		}

		if l.shutdown.Requested() {
			return l.shutdownSequence()
		}

		select {
		case note := <-l.liveCh:
			l.matchStep(note)
			l.play = true
		case <-playbackTimer.C:
			l.play = true
		case <-shutdownTicker.C:
			// Wake only to re-check the shutdown flag above.
		}
	}
}

// matchStep appends a newly arrived live note to the loop's buffer and
// runs the matcher over everything pushed since the last call.
func (l *Loop) matchStep(note score.LiveNote) {
	l.live = append(l.live, note)
	l.matcher.PushLive(note)
	l.matcher.Follow()
	l.publishSnapshot()
}

// publishSnapshot is a no-op when the loop was built without a store.
func (l *Loop) publishSnapshot() {
	if l.snapshots == nil {
		return
	}
	hasMatch, m, matchCount, ignoredCount := snapshot.FromMatch(l.matcher)
	l.snapshots.Publish(snapshot.Snapshot{
		Time:          time.Now(),
		HasMatch:      hasMatch,
		MatchScore:    m.ScoreIndex,
		MatchLive:     m.LiveIndex,
		StretchFactor: m.StretchFactor,
		LiveVelocity:  m.LiveVelocity,
		MatchCount:    matchCount,
		IgnoredCount:  ignoredCount,
		PlaybackHead:  l.scheduler.Head(),
		PlaybackTotal: l.scheduler.Total(),
		Emitted:       l.emitted,
	})
}

// emitStep runs the playback scheduler against the most recent match and
// flushes every emitted message as a single batch before returning the
// next wait duration.
func (l *Loop) emitStep() (time.Duration, error) {
	lastMatch, ok := l.matcher.LastMatch()
	if !ok {
		return playback.IdleWait, nil
	}

	var outbound [][]byte
	wait, err := l.scheduler.Step(time.Now(), l.sessionStart, lastMatch, l.expectation, l.live, lastMatch.StretchFactor, lastMatch.LiveVelocity, func(event score.ScoreEvent) error {
		outbound = append(outbound, event.Message)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("loop: emit step: %w", err)
	}

	for _, raw := range outbound {
		if err := l.write(raw); err != nil {
			return 0, fmt.Errorf("loop: output write: %w", err)
		}
		l.emitted++
	}
	l.publishSnapshot()
	return wait, nil
}

// shutdownSequence emits All Sound Off on every channel and flushes it
// as the session's final act.
func (l *Loop) shutdownSequence() error {
	for _, msg := range AllSoundOff() {
		if err := l.write(msg); err != nil {
			return fmt.Errorf("loop: shutdown write: %w", err)
		}
	}
	return nil
}

func drainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}
