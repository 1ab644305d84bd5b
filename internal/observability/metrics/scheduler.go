package metrics

import (
	"time"

	obserrors "github.com/strixlab/patrol/internal/observability/errors"
	"github.com/strixlab/patrol/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// CycleMetric captures details about one populate cycle for metric emission.
type CycleMetric struct {
	SchedulerID string
	Result      string
	Pushed      int
	QueueSize   int
	Duration    time.Duration
	Err         error
}

// EmitPopulateCycle emits standardised populate-cycle metrics: a tick
// counter tagged with the result, the cycle duration, and the queue size
// after the cycle. Pass a negative QueueSize when the size is unknown.
func EmitPopulateCycle(sink statsd.Sink, in CycleMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"scheduler_id": in.SchedulerID,
		"result":       in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("scheduler.tick", 1, tags)

	if in.Duration > 0 {
		sink.Timing("scheduler.tick_duration", in.Duration, CloneTags(tags))
	}
	if in.QueueSize >= 0 {
		sink.Gauge("queue.size", float64(in.QueueSize), map[string]string{"scheduler_id": in.SchedulerID})
	}
}

// EmitPush counts one item accepted onto a queue.
func EmitPush(sink statsd.Sink, schedulerID, itemType string) {
	if sink == nil {
		return
	}
	sink.Count("scheduler.push", 1, map[string]string{
		"scheduler_id": schedulerID,
		"item_type":    itemType,
	})
}

// EmitSchedulerCount gauges how many schedulers the supervisor is running.
func EmitSchedulerCount(sink statsd.Sink, count int) {
	if sink == nil {
		return
	}
	sink.Gauge("supervisor.schedulers", float64(count), nil)
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
