package match

import (
	"testing"

	"accompanist/pkg/score"
)

func TestFlexTheOnlyNote(t *testing.T) {
	f := NewFlex(score.Score{{Time: ms(1000), Pitch: 60}})
	f.PushLive(score.LiveNote{Time: ms(5), Pitch: 60})
	matches, ignored := f.Follow()

	if len(matches) != 1 || matches[0].ScoreIndex != 0 || matches[0].LiveIndex != 0 {
		t.Fatalf("matches = %+v", matches)
	}
	if matches[0].StretchFactor != 1.0 {
		t.Errorf("stretch = %v, want 1.0", matches[0].StretchFactor)
	}
	if len(ignored) != 0 {
		t.Errorf("ignored = %v, want none", ignored)
	}
}

func TestFlexMatchFirst(t *testing.T) {
	f := NewFlex(testExpectation())
	f.PushLive(score.LiveNote{Time: ms(5), Pitch: 60})
	matches, ignored := f.Follow()

	if len(matches) != 1 || matches[0].ScoreIndex != 0 || matches[0].LiveIndex != 0 {
		t.Fatalf("matches = %+v", matches)
	}
	if matches[0].StretchFactor != 1.0 {
		t.Errorf("stretch = %v, want 1.0", matches[0].StretchFactor)
	}
	if len(ignored) != 0 {
		t.Errorf("ignored = %v, want none", ignored)
	}
}

func TestFlexMatchSecond(t *testing.T) {
	f := NewFlex(testExpectation())
	f.PushLive(score.LiveNote{Time: ms(5), Pitch: 60})
	f.Follow()
	f.PushLive(score.LiveNote{Time: ms(55), Pitch: 62})
	matches, ignored := f.Follow()

	if len(matches) != 1 || matches[0].ScoreIndex != 1 || matches[0].LiveIndex != 1 {
		t.Fatalf("matches = %+v", matches)
	}
	if matches[0].StretchFactor != 0.5 {
		t.Errorf("stretch = %v, want 0.5", matches[0].StretchFactor)
	}
	if len(ignored) != 0 {
		t.Errorf("ignored = %v, want none", ignored)
	}
}

func TestFlexSkipExtraNote(t *testing.T) {
	f := NewFlex(testExpectation())
	f.PushLive(score.LiveNote{Time: ms(5), Pitch: 60})
	f.Follow()
	f.PushLive(score.LiveNote{Time: ms(25), Pitch: 61})
	f.PushLive(score.LiveNote{Time: ms(55), Pitch: 62})
	matches, ignored := f.Follow()

	if len(matches) != 1 || matches[0].ScoreIndex != 1 || matches[0].LiveIndex != 2 {
		t.Fatalf("matches = %+v", matches)
	}
	if matches[0].StretchFactor != 0.5 {
		t.Errorf("stretch = %v, want 0.5", matches[0].StretchFactor)
	}
	if len(ignored) != 1 || ignored[0] != 1 {
		t.Errorf("ignored = %v, want [1]", ignored)
	}
}

func TestFlexSkipMissingNote(t *testing.T) {
	f := NewFlex(testExpectation())
	f.PushLive(score.LiveNote{Time: ms(5), Pitch: 60})
	f.Follow()
	f.PushLive(score.LiveNote{Time: ms(55), Pitch: 64})
	matches, ignored := f.Follow()

	if len(matches) != 1 || matches[0].ScoreIndex != 2 || matches[0].LiveIndex != 1 {
		t.Fatalf("matches = %+v", matches)
	}
	if matches[0].StretchFactor != 0.25 {
		t.Errorf("stretch = %v, want 0.25", matches[0].StretchFactor)
	}
	if len(ignored) != 0 {
		t.Errorf("ignored = %v, want none", ignored)
	}
}

func TestFlexOnlyWrongNotes(t *testing.T) {
	f := NewFlex(testExpectation())
	f.PushLive(score.LiveNote{Time: ms(5), Pitch: 60})
	f.Follow()
	f.PushLive(score.LiveNote{Time: ms(55), Pitch: 63})
	f.PushLive(score.LiveNote{Time: ms(105), Pitch: 66})
	matches, ignored := f.Follow()

	if len(matches) != 0 {
		t.Fatalf("matches = %+v, want none", matches)
	}
	if len(ignored) != 2 || ignored[0] != 1 || ignored[1] != 2 {
		t.Errorf("ignored = %v, want [1 2]", ignored)
	}
}

// TestFlexSamePitchSameBatchAnchorsIndependently documents the
// frozen-previous-match batch semantics: the per-pitch "next unmatched
// offset" cursor only advances once the whole Follow() call commits, so
// two live notes of the same pitch arriving within one call are each
// resolved against the same unmatched bucket offset rather than against
// each other's pick.
func TestFlexSamePitchSameBatchAnchorsIndependently(t *testing.T) {
	expectation := score.Score{
		{Time: ms(1000), Pitch: 60},
		{Time: ms(1100), Pitch: 60},
		{Time: ms(1200), Pitch: 60},
	}
	f := NewFlex(expectation)
	f.PushLive(score.LiveNote{Time: ms(1000), Pitch: 60})
	f.PushLive(score.LiveNote{Time: ms(1010), Pitch: 60})
	matches, ignored := f.Follow()

	if len(matches) != 2 {
		t.Fatalf("matches = %+v, want 2", matches)
	}
	if matches[0].ScoreIndex != 0 || matches[1].ScoreIndex != 0 {
		t.Errorf("matches = %+v, want both anchored at score index 0", matches)
	}
	if len(ignored) != 0 {
		t.Errorf("ignored = %v, want none", ignored)
	}
}

func TestFlexPitchAbsentFromScore(t *testing.T) {
	f := NewFlex(testExpectation())
	f.PushLive(score.LiveNote{Time: ms(5), Pitch: 61})
	matches, ignored := f.Follow()

	if len(matches) != 0 {
		t.Fatalf("matches = %+v, want none", matches)
	}
	if len(ignored) != 1 || ignored[0] != 0 {
		t.Errorf("ignored = %v, want [0]", ignored)
	}
}
