package router

import (
	"context"
	"fmt"
	"time"

	"wordlygate/pkg/bus"
	"wordlygate/pkg/logger"
	"wordlygate/pkg/menu"
)

const routeTimeout = 10 * time.Second

// ScreenSender delivers a rendered screen to a chat.
type ScreenSender interface {
	SendScreen(ctx context.Context, chatID int64, msg menu.Rendered) error
}

// PressAcker acknowledges a button press to the platform so the client
// stops showing its loading spinner.
type PressAcker interface {
	AckButtonPress(ctx context.Context, token string) error
}

// commandScreens is the closed command set. Adding a command is a catalog
// edit here, not a new case scattered across handlers.
var commandScreens = map[string]menu.ScreenID{
	"start": menu.ScreenMain,
}

// Action tells what the router did with an event.
type Action string

const (
	ActionRendered Action = "rendered"
	ActionNone     Action = "none"
)

// Outcome is the total result of routing one event. Unrecognized input is
// an explicit ActionNone outcome, never an implicit fallthrough.
type Outcome struct {
	Action Action
	Screen menu.ScreenID
	Acked  bool
	Reason string
}

// Router resolves inbound events to screen renders. It is stateless per
// event: buttons carry their own target and commands always resolve through
// commandScreens, so no per-chat session store exists.
type Router struct {
	catalog *menu.Catalog
	sender  ScreenSender
	acker   PressAcker
	events  *bus.EventBus
}

func NewRouter(catalog *menu.Catalog, sender ScreenSender, acker PressAcker, events *bus.EventBus) *Router {
	return &Router{
		catalog: catalog,
		sender:  sender,
		acker:   acker,
		events:  events,
	}
}

// Run consumes the event bus until ctx is canceled or the bus closes.
// Events are dispatched sequentially, which preserves per-chat arrival
// order whenever the delivery layer does.
func (r *Router) Run(ctx context.Context) {
	logger.InfoC("router", "Conversation router started")
	for {
		ev, ok := r.events.Consume(ctx)
		if !ok {
			logger.InfoC("router", "Conversation router stopped")
			return
		}
		r.dispatch(ctx, ev)
	}
}

func (r *Router) dispatch(ctx context.Context, ev bus.InboundEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorCF("router", "Recovered panic while routing event", map[string]interface{}{
				"panic":              fmt.Sprintf("%v", rec),
				logger.FieldChatID:   ev.ChatID,
				logger.FieldUpdateID: ev.UpdateID,
			})
		}
	}()

	routeCtx, cancel := context.WithTimeout(ctx, routeTimeout)
	defer cancel()

	outcome, err := r.Route(routeCtx, ev)
	if err != nil {
		logger.ErrorCF("router", "Routing failed", map[string]interface{}{
			logger.FieldChatID: ev.ChatID,
			logger.FieldError:  err.Error(),
		})
		return
	}
	if outcome.Action == ActionNone {
		logger.DebugCF("router", "No action for event", map[string]interface{}{
			logger.FieldChatID: ev.ChatID,
			"reason":           outcome.Reason,
		})
	}
}

// Route maps one event to at most one screen render plus the required
// acknowledgment. For button presses the ack happens exactly once, before
// and independent of the render.
func (r *Router) Route(ctx context.Context, ev bus.InboundEvent) (Outcome, error) {
	switch ev.Kind {
	case bus.KindCommand:
		return r.routeCommand(ctx, ev)
	case bus.KindButtonPress:
		return r.routeButtonPress(ctx, ev)
	}
	return Outcome{Action: ActionNone, Reason: "unknown event kind"}, nil
}

func (r *Router) routeCommand(ctx context.Context, ev bus.InboundEvent) (Outcome, error) {
	target, ok := commandScreens[ev.Command]
	if !ok {
		return Outcome{Action: ActionNone, Reason: "unrecognized command"}, nil
	}

	msg := r.catalog.Render(target, ev.DisplayName)
	if err := r.sender.SendScreen(ctx, ev.ChatID, msg); err != nil {
		return Outcome{}, fmt.Errorf("send %s screen: %w", target, err)
	}

	logger.InfoCF("router", "Command routed", map[string]interface{}{
		logger.FieldCommand: ev.Command,
		logger.FieldScreen:  string(target),
		logger.FieldChatID:  ev.ChatID,
	})
	return Outcome{Action: ActionRendered, Screen: target}, nil
}

func (r *Router) routeButtonPress(ctx context.Context, ev bus.InboundEvent) (Outcome, error) {
	// Stop-the-spinner contract: the press is acknowledged whether or not
	// anything renders afterwards. An ack failure is logged, never fatal.
	if err := r.acker.AckButtonPress(ctx, ev.AckToken); err != nil {
		logger.WarnCF("router", "Button press ack failed", map[string]interface{}{
			logger.FieldChatID: ev.ChatID,
			logger.FieldError:  err.Error(),
		})
	}

	target, ok := menu.ParseScreenID(ev.Target)
	if !ok || !r.catalog.Has(target) {
		return Outcome{Action: ActionNone, Acked: true, Reason: "unrecognized button target"}, nil
	}

	msg := r.catalog.Render(target, ev.DisplayName)
	if err := r.sender.SendScreen(ctx, ev.ChatID, msg); err != nil {
		return Outcome{Acked: true}, fmt.Errorf("send %s screen: %w", target, err)
	}

	logger.InfoCF("router", "Button press routed", map[string]interface{}{
		logger.FieldScreen: string(target),
		logger.FieldChatID: ev.ChatID,
	})
	return Outcome{Action: ActionRendered, Screen: target, Acked: true}, nil
}
