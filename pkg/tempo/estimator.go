// Package tempo turns pairs of (score Δt, live Δt) into a running tempo
// stretch factor, and provides the Stretch helper used to project time
// across the live/score divide in both directions.
package tempo

import "time"

// ComputeStretchFactor is the pure (elapsedScore, elapsedLive) -> stretch
// ratio at the heart of tempo estimation. When elapsedScore is zero —
// simultaneous score notes, as in a chord — prior is returned instead of
// dividing by zero; this is a deliberate policy choice (see the
// division-by-zero design note), not an incidental one.
func ComputeStretchFactor(elapsedScore, elapsedLive time.Duration, prior float64) float64 {
	if elapsedScore <= 0 {
		return prior
	}
	return float64(elapsedLive) / float64(elapsedScore)
}

// Estimator tracks the most recently computed stretch factor for matchers
// that update it progressively, one match at a time, within a single
// batch of new live notes (the strict matcher's cursor moves forward
// match by match, so each new match should see the stretch factor from
// the match immediately before it — including ones found earlier in the
// same batch).
type Estimator struct {
	prior float64
}

// NewEstimator returns an Estimator seeded with a stretch factor of 1.0,
// matching the convention that the first match always has stretch 1.0.
func NewEstimator() *Estimator {
	return &Estimator{prior: 1.0}
}

// Prior returns the last stretch factor computed (or 1.0 if Update has
// never been called).
func (e *Estimator) Prior() float64 {
	return e.prior
}

// Update computes the stretch factor for a new pair of matches given the
// elapsed score time and elapsed live time between them, and remembers it
// as the new prior.
func (e *Estimator) Update(elapsedScore, elapsedLive time.Duration) float64 {
	e.prior = ComputeStretchFactor(elapsedScore, elapsedLive, e.prior)
	return e.prior
}

// Stretch scales a duration by factor, used both to map live elapsed time
// into score-time units (factor = 1/k) and to map score elapsed time into
// wall-clock wait durations (factor = k).
func Stretch(d time.Duration, factor float64) time.Duration {
	return time.Duration(float64(d) * factor)
}
