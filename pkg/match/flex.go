package match

import (
	"time"

	"accompanist/pkg/score"
	"accompanist/pkg/tempo"
)

// Flex is the pitch-indexed polyphonic matcher: rather than a single
// forward-moving cursor, it keeps one cursor per pitch and, for each
// incoming live note, picks the nearest-in-mapped-time unmatched
// occurrence of that pitch. All new matches and stretch-factor
// computations produced within one Follow() call reference the match
// most recently committed *before* that call started — matches found
// earlier in the same batch do not influence later ones in the same
// batch. This mirrors the reference matcher exactly and is why two live
// notes of the same pitch arriving in one batch can anchor against the
// same prior match.
type Flex struct {
	expectation score.Score
	directory   map[score.Pitch][]score.ScoreIndex

	live      []score.LiveNote
	processed int

	matches []Match
	ignored []score.LiveIndex

	// nextUnmatchedOffset holds, per pitch, the bucket offset (not a
	// global score index) of the next unmatched occurrence of that pitch.
	nextUnmatchedOffset map[score.Pitch]score.PitchOffset
}

// NewFlex builds a Flex matcher against a fixed expectation score,
// indexing every score note by pitch up front.
func NewFlex(expectation score.Score) *Flex {
	directory := make(map[score.Pitch][]score.ScoreIndex)
	for i, note := range expectation {
		directory[note.Pitch] = append(directory[note.Pitch], score.ScoreIndex(i))
	}
	return &Flex{
		expectation:         expectation,
		directory:           directory,
		nextUnmatchedOffset: make(map[score.Pitch]score.PitchOffset),
	}
}

func (f *Flex) PushLive(note score.LiveNote) score.LiveIndex {
	f.live = append(f.live, note)
	return score.LiveIndex(len(f.live) - 1)
}

func (f *Flex) Follow() ([]Match, []score.LiveIndex) {
	frozenPrev, havePrev := f.LastMatch()

	var newMatches []Match
	var newIgnored []score.LiveIndex
	offsetUpdates := make(map[score.Pitch]score.PitchOffset)

	for i := f.processed; i < len(f.live); i++ {
		note := f.live[i]
		liveIdx := score.LiveIndex(i)
		m, bucketOffset, found := f.findNewMatch(note, liveIdx, frozenPrev, havePrev)
		if !found {
			newIgnored = append(newIgnored, liveIdx)
			continue
		}
		newMatches = append(newMatches, m)
		offsetUpdates[note.Pitch] = bucketOffset + 1
	}

	f.matches = append(f.matches, newMatches...)
	f.ignored = append(f.ignored, newIgnored...)
	for pitch, next := range offsetUpdates {
		f.nextUnmatchedOffset[pitch] = next
	}
	f.processed = len(f.live)
	return newMatches, newIgnored
}

// findNewMatch scans the unmatched tail of this pitch's bucket for the
// entry nearest in mapped time to note, stopping at the first point the
// distance stops improving (the bucket's times are assumed increasing,
// so the distance to mappedTime is unimodal across it). Ties keep the
// earlier candidate.
func (f *Flex) findNewMatch(note score.LiveNote, liveIdx score.LiveIndex, frozenPrev Match, havePrev bool) (Match, score.PitchOffset, bool) {
	bucket := f.directory[note.Pitch]
	start := int(f.nextUnmatchedOffset[note.Pitch])
	if start >= len(bucket) {
		return Match{}, 0, false
	}

	mappedTime := f.liveTimeMapped(note.Time, frozenPrev, havePrev)

	best := -1
	var minDiff time.Duration
	for i := start; i < len(bucket); i++ {
		diff := absDuration(f.expectation[bucket[i]].Time - mappedTime)
		if best < 0 || diff < minDiff {
			best = i
			minDiff = diff
		} else {
			break
		}
	}
	if best < 0 {
		return Match{}, 0, false
	}

	scoreIdx := bucket[best]
	stretch := f.stretchFactorAtNewMatch(f.expectation[scoreIdx].Time, note.Time, frozenPrev, havePrev)
	m := Match{
		ScoreIndex:    scoreIdx,
		LiveIndex:     liveIdx,
		StretchFactor: stretch,
		ScoreVelocity: f.expectation[scoreIdx].Velocity,
		LiveVelocity:  note.Velocity,
	}
	return m, score.PitchOffset(best), true
}

// liveTimeMapped projects a live timestamp into score-time units relative
// to the frozen previous match, using the inverse of its stretch factor.
func (f *Flex) liveTimeMapped(liveTime time.Duration, frozenPrev Match, havePrev bool) time.Duration {
	if !havePrev {
		return 0
	}
	prevLiveTime := f.live[frozenPrev.LiveIndex].Time
	return tempo.Stretch(liveTime-prevLiveTime, 1.0/frozenPrev.StretchFactor)
}

func (f *Flex) stretchFactorAtNewMatch(newScoreTime, newLiveTime time.Duration, frozenPrev Match, havePrev bool) float64 {
	if !havePrev {
		return 1.0
	}
	prevScoreTime := f.expectation[frozenPrev.ScoreIndex].Time
	prevLiveTime := f.live[frozenPrev.LiveIndex].Time
	elapsedScore := newScoreTime - prevScoreTime
	elapsedLive := newLiveTime - prevLiveTime
	return tempo.ComputeStretchFactor(elapsedScore, elapsedLive, frozenPrev.StretchFactor)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func (f *Flex) LastMatch() (Match, bool) {
	if len(f.matches) == 0 {
		return Match{}, false
	}
	return f.matches[len(f.matches)-1], true
}

func (f *Flex) Matches() []Match { return f.matches }

func (f *Flex) Ignored() []score.LiveIndex { return f.ignored }

var _ Follower = (*Flex)(nil)
