package channels

import (
	"strings"

	"github.com/mymmrac/telego"

	"wordlygate/pkg/bus"
)

// Normalize maps one raw platform update onto at most one InboundEvent.
// This is the single interpretation boundary for both delivery modes: the
// router never sees raw updates. Updates that carry neither a command nor a
// button press are dropped here.
func Normalize(update telego.Update) (bus.InboundEvent, bool) {
	if m := update.Message; m != nil && strings.HasPrefix(m.Text, "/") {
		ev := bus.InboundEvent{
			Kind:     bus.KindCommand,
			ChatID:   m.Chat.ID,
			UpdateID: update.UpdateID,
			Command:  commandName(m.Text),
		}
		if m.From != nil {
			ev.DisplayName = m.From.FirstName
		}
		return ev, true
	}

	if cb := update.CallbackQuery; cb != nil {
		// Replies target the presser's private chat; for this bot's 1:1
		// flow that is the chat the menu lives in.
		return bus.InboundEvent{
			Kind:        bus.KindButtonPress,
			ChatID:      cb.From.ID,
			UpdateID:    update.UpdateID,
			Target:      cb.Data,
			AckToken:    cb.ID,
			DisplayName: cb.From.FirstName,
		}, true
	}

	return bus.InboundEvent{}, false
}

// commandName extracts the bare command from a message like
// "/start", "/start payload" or "/start@SomeBot".
func commandName(text string) string {
	name := strings.TrimPrefix(text, "/")
	if i := strings.IndexByte(name, ' '); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return name
}
