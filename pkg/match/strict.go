package match

import (
	"time"

	"accompanist/pkg/score"
	"accompanist/pkg/tempo"
)

// Strict is the monophonic pitch-sequence matcher: a score cursor that
// only ever moves forward. Chord members at the same score time must
// arrive from the performer in score order or the later ones are ignored.
type Strict struct {
	expectation score.Score
	live        []score.LiveNote
	processed   int // live notes already passed to Follow
	cursor      score.ScoreIndex
	matches     []Match
	ignored     []score.LiveIndex
	estimator   *tempo.Estimator
}

// NewStrict builds a Strict matcher against a fixed expectation score.
func NewStrict(expectation score.Score) *Strict {
	return &Strict{
		expectation: expectation,
		estimator:   tempo.NewEstimator(),
	}
}

func (s *Strict) PushLive(note score.LiveNote) score.LiveIndex {
	s.live = append(s.live, note)
	return score.LiveIndex(len(s.live) - 1)
}

func (s *Strict) Follow() ([]Match, []score.LiveIndex) {
	var newMatches []Match
	var newIgnored []score.LiveIndex

	for i := s.processed; i < len(s.live); i++ {
		liveNote := s.live[i]
		scoreIndex, found := s.findNextMatch(s.cursor, liveNote.Pitch)
		if !found {
			idx := score.LiveIndex(i)
			newIgnored = append(newIgnored, idx)
			s.ignored = append(s.ignored, idx)
			continue
		}

		stretch := s.stretchFactorAt(scoreIndex, liveNote.Time)
		m := Match{
			ScoreIndex:    scoreIndex,
			LiveIndex:     score.LiveIndex(i),
			StretchFactor: stretch,
			ScoreVelocity: s.expectation[scoreIndex].Velocity,
			LiveVelocity:  liveNote.Velocity,
		}
		newMatches = append(newMatches, m)
		s.matches = append(s.matches, m)
		s.cursor = scoreIndex + 1
	}
	s.processed = len(s.live)
	return newMatches, newIgnored
}

// findNextMatch scans forward from `from` for the first expectation note
// with the given pitch.
func (s *Strict) findNextMatch(from score.ScoreIndex, pitch score.Pitch) (score.ScoreIndex, bool) {
	for i := int(from); i < len(s.expectation); i++ {
		if s.expectation[i].Pitch == pitch {
			return score.ScoreIndex(i), true
		}
	}
	return 0, false
}

// stretchFactorAt computes the stretch factor for a new match against the
// most recent match so far, or 1.0 if this is the first match.
func (s *Strict) stretchFactorAt(newScoreIndex score.ScoreIndex, newLiveTime time.Duration) float64 {
	if len(s.matches) == 0 {
		return 1.0
	}
	prev := s.matches[len(s.matches)-1]
	elapsedScore := s.expectation[newScoreIndex].Time - s.expectation[prev.ScoreIndex].Time
	elapsedLive := newLiveTime - s.live[prev.LiveIndex].Time
	return s.estimator.Update(elapsedScore, elapsedLive)
}

func (s *Strict) LastMatch() (Match, bool) {
	if len(s.matches) == 0 {
		return Match{}, false
	}
	return s.matches[len(s.matches)-1], true
}

func (s *Strict) Matches() []Match { return s.matches }

func (s *Strict) Ignored() []score.LiveIndex { return s.ignored }

var _ Follower = (*Strict)(nil)
