package ranker

import (
	"context"
	"testing"
	"time"

	"github.com/strixlab/patrol/internal/testutil"
)

func TestNormalizerRanker_Rank_ReturnsEpochSeconds(t *testing.T) {
	now := testutil.TestTime()
	r := NewNormalizerRanker()

	got := r.Rank(context.Background(), now)
	if got != now.Unix() {
		t.Errorf("Rank() = %d, want %d", got, now.Unix())
	}
}

func TestNormalizerRanker_Rank_OrdersByArrival(t *testing.T) {
	r := NewNormalizerRanker()
	first := r.Rank(context.Background(), testutil.TestTime())
	second := r.Rank(context.Background(), testutil.TestTime().Add(time.Second))

	if first >= second {
		t.Errorf("Rank() ordering broken: first=%d second=%d", first, second)
	}
}
