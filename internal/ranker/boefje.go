// Package ranker scores tasks for queue placement. Lower scores pop first,
// so a lower rank means more urgent.
package ranker

import (
	"context"
	"math"
	"time"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/domain/model"
)

var _ core.BoefjeRanker = (*BoefjeRanker)(nil)

// Priorities below 3 carry fixed meanings on the queue: 0 is reserved for
// manually injected work, 1 is unassigned, and 2 marks tasks that have never
// run. Ranked reruns therefore never score below priorityFloor.
const (
	priorityNeverRan int64 = 2
	priorityFloor    int64 = 3
)

// deferScore tells callers the task ran too recently to be rescheduled.
const deferScore int64 = -1

// decayWindow is the interval past the grace period over which a rerun's
// priority decays from the back of the queue down to the floor.
const decayWindow = 7 * 24 * time.Hour

// maxScore caps the float64-to-int64 conversion for very large configured
// queue sizes.
const maxScore int64 = math.MaxInt64 >> 1

// BoefjeRanker scores boefje reruns with exponential decay: the longer a
// task sits unrun past its grace period, the closer its priority moves to
// the floor. A fresh rerun starts at the back of the queue (around the
// queue's max size) and reaches the floor after decayWindow.
type BoefjeRanker struct {
	queueMaxSize int
	gracePeriod  time.Duration
}

// NewBoefjeRanker constructs a BoefjeRanker. queueMaxSize anchors the top of
// the decay curve; gracePeriod defers reruns that happened too recently.
func NewBoefjeRanker(queueMaxSize int, gracePeriod time.Duration) *BoefjeRanker {
	return &BoefjeRanker{
		queueMaxSize: queueMaxSize,
		gracePeriod:  gracePeriod,
	}
}

// Rank scores one boefje task. A nil lastRun means the boefje/OOI pair never
// ran and scores priorityNeverRan. A run still in flight, or one that ended
// within the grace period, scores negative: not admissible yet.
func (r *BoefjeRanker) Rank(_ context.Context, lastRun *model.BoefjeMeta, now time.Time) int64 {
	if lastRun == nil {
		return priorityNeverRan
	}
	if lastRun.EndedAt == nil {
		// Still running.
		return deferScore
	}

	sinceGrace := now.Sub(*lastRun.EndedAt) - r.gracePeriod
	if sinceGrace < 0 {
		return deferScore
	}

	decay := math.Exp(-(math.Log(1000) / decayWindow.Seconds()) * sinceGrace.Seconds())
	score := float64(r.queueMaxSize)*decay + 2

	if score > float64(maxScore) {
		return maxScore
	}
	if score < float64(priorityFloor) {
		return priorityFloor
	}
	return int64(score)
}
