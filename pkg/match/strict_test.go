package match

import (
	"testing"
	"time"

	"accompanist/pkg/score"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func testExpectation() score.Score {
	return score.Score{
		{Time: ms(1000), Pitch: 60},
		{Time: ms(1100), Pitch: 62},
		{Time: ms(1200), Pitch: 64},
	}
}

func pushAll(f Follower, notes []score.LiveNote) {
	for _, n := range notes {
		f.PushLive(n)
	}
}

func TestStrictMatchFirst(t *testing.T) {
	f := NewStrict(testExpectation())
	pushAll(f, []score.LiveNote{{Time: ms(5), Pitch: 60}})
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

func TestStrictMatchSecond(t *testing.T) {
	f := NewStrict(testExpectation())
	pushAll(f, []score.LiveNote{{Time: ms(5), Pitch: 60}, {Time: ms(55), Pitch: 62}})
	f.Follow()

	// Second call only sees the second live note was "new" because
	// Follow() tracks what it has already processed.
	f2 := NewStrict(testExpectation())
	f2.PushLive(score.LiveNote{Time: ms(5), Pitch: 60})
	f2.Follow()
	f2.PushLive(score.LiveNote{Time: ms(55), Pitch: 62})
	matches, ignored := f2.Follow()

	if len(matches) != 1 {
		t.Fatalf("matches = %+v", matches)
	}
	if matches[0].ScoreIndex != 1 || matches[0].LiveIndex != 1 {
		t.Errorf("matches[0] = %+v", matches[0])
	}
	if matches[0].StretchFactor != 0.5 {
		t.Errorf("stretch = %v, want 0.5", matches[0].StretchFactor)
	}
	if len(ignored) != 0 {
		t.Errorf("ignored = %v, want none", ignored)
	}
}

func TestStrictSkipExtraNote(t *testing.T) {
	f := NewStrict(testExpectation())
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

func TestStrictSkipMissingNote(t *testing.T) {
	f := NewStrict(testExpectation())
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

func TestStrictOnlyWrongNotes(t *testing.T) {
	f := NewStrict(testExpectation())
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

func TestStrictInvariantsHold(t *testing.T) {
	f := NewStrict(testExpectation())
	pushAll(f, []score.LiveNote{
		{Time: ms(5), Pitch: 60},
		{Time: ms(25), Pitch: 61},
		{Time: ms(55), Pitch: 62},
		{Time: ms(105), Pitch: 64},
	})
	matches, ignored := f.Follow()

	if len(matches)+len(ignored) != 4 {
		t.Fatalf("matches+ignored = %d, want 4", len(matches)+len(ignored))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].LiveIndex <= matches[i-1].LiveIndex {
			t.Errorf("live index not strictly increasing at %d", i)
		}
		if matches[i].ScoreIndex <= matches[i-1].ScoreIndex {
			t.Errorf("score index not strictly increasing at %d", i)
		}
	}
	for _, m := range matches {
		if f.expectation[m.ScoreIndex].Pitch != f.live[m.LiveIndex].Pitch {
			t.Errorf("pitch mismatch at match %+v", m)
		}
	}
}
