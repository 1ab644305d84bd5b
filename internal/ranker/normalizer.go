package ranker

import (
	"context"
	"time"

	"github.com/strixlab/patrol/internal/core"
)

var _ core.NormalizerRanker = (*NormalizerRanker)(nil)

// NormalizerRanker scores normalizer tasks by arrival time, so raw files are
// processed in the order they were received.
type NormalizerRanker struct{}

// NewNormalizerRanker constructs a NormalizerRanker.
func NewNormalizerRanker() *NormalizerRanker {
	return &NormalizerRanker{}
}

// Rank returns the current epoch second as the score.
func (r *NormalizerRanker) Rank(_ context.Context, now time.Time) int64 {
	return now.UTC().Unix()
}
