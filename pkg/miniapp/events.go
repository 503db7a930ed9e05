package miniapp

import (
	"context"

	"wordlygate/pkg/logger"
)

// GameEvent is a telemetry record reported by the game client. The
// payload is forwarded opaquely and may be any JSON value; the gateway
// never interprets it.
type GameEvent struct {
	ID      string
	Payload interface{}
}

// EventSink receives game telemetry. Implementations must tolerate
// arbitrary payload shapes.
type EventSink interface {
	Record(ctx context.Context, ev GameEvent) error
}

// logSink writes each event to the structured log. It stands in until a
// real analytics pipeline exists.
type logSink struct{}

func (logSink) Record(_ context.Context, ev GameEvent) error {
	fields := map[string]interface{}{
		logger.FieldEventID: ev.ID,
	}
	if obj, ok := ev.Payload.(map[string]interface{}); ok {
		if t, ok := obj["type"].(string); ok {
			fields["type"] = t
		}
	}
	logger.InfoCF("miniapp", "Game event recorded", fields)
	return nil
}
