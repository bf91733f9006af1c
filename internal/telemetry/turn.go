package telemetry

import (
	"context"
	"time"

	"github.com/petasbytes/sidekick/internal/metrics"
	"github.com/petasbytes/sidekick/memory"
)

// TurnSubmitted records the shape of a request sent to the agent.
func (r *Recorder) TurnSubmitted(ctx context.Context, message, criterion string, history []memory.Turn) {
	turnID, _ := TurnIDFromContext(ctx)
	r.Emit("turn_submitted", map[string]any{
		"turn_id":       turnID,
		"message":       metrics.Measure(message).Fields(),
		"has_criterion": criterion != "",
		"history_turns": len(history),
		"history":       metrics.MeasureTurns(history).Fields(),
	})
}

// TurnAnswered records the outcome of one exchange. err is nil on success.
func (r *Recorder) TurnAnswered(ctx context.Context, answer string, elapsed time.Duration, err error) {
	turnID, _ := TurnIDFromContext(ctx)
	fields := map[string]any{
		"turn_id":     turnID,
		"duration_ms": elapsed.Milliseconds(),
		"answer":      metrics.Measure(answer).Fields(),
		"error":       nil,
	}
	if err != nil {
		// Error text may quote model output; only its presence is recorded.
		fields["error"] = "turn failed"
	}
	r.Emit("turn_answered", fields)
}
