package channels

import (
	"testing"

	"github.com/mymmrac/telego"

	"wordlygate/pkg/bus"
)

func TestNormalize_StartCommand(t *testing.T) {
	update := telego.Update{
		UpdateID: 100,
		Message: &telego.Message{
			Text: "/start",
			Chat: telego.Chat{ID: 42},
			From: &telego.User{ID: 42, FirstName: "Alice"},
		},
	}

	ev, ok := Normalize(update)
	if !ok {
		t.Fatal("expected command event")
	}
	if ev.Kind != bus.KindCommand || ev.Command != "start" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.ChatID != 42 || ev.DisplayName != "Alice" || ev.UpdateID != 100 {
		t.Fatalf("unexpected event metadata: %+v", ev)
	}
}

func TestNormalize_CommandWithBotSuffixAndPayload(t *testing.T) {
	for _, text := range []string{"/start@WordlyBot", "/start ref123", "/start@WordlyBot ref123"} {
		update := telego.Update{
			Message: &telego.Message{
				Text: text,
				Chat: telego.Chat{ID: 1},
			},
		}
		ev, ok := Normalize(update)
		if !ok || ev.Command != "start" {
			t.Fatalf("text %q: expected start command, got %+v ok=%v", text, ev, ok)
		}
	}
}

func TestNormalize_ButtonPress(t *testing.T) {
	update := telego.Update{
		UpdateID: 101,
		CallbackQuery: &telego.CallbackQuery{
			ID:   "cb-1",
			From: telego.User{ID: 42, FirstName: "Alice"},
			Data: "help",
		},
	}

	ev, ok := Normalize(update)
	if !ok {
		t.Fatal("expected button press event")
	}
	if ev.Kind != bus.KindButtonPress || ev.Target != "help" || ev.AckToken != "cb-1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.ChatID != 42 {
		t.Fatalf("expected chat resolved from presser, got %d", ev.ChatID)
	}
}

func TestNormalize_PlainTextDropped(t *testing.T) {
	update := telego.Update{
		Message: &telego.Message{
			Text: "hello there",
			Chat: telego.Chat{ID: 1},
		},
	}

	if _, ok := Normalize(update); ok {
		t.Fatal("expected plain text to produce no event")
	}
}

func TestNormalize_EmptyUpdateDropped(t *testing.T) {
	if _, ok := Normalize(telego.Update{UpdateID: 1}); ok {
		t.Fatal("expected empty update to produce no event")
	}
}
