package channels

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mymmrac/telego"

	"wordlygate/pkg/bus"
)

const testToken = "123456789:AAHkQWxvbmdmYWtldG9rZW5mb3J0ZXN0cw"

func newWebhookChannel(events *bus.EventBus) *TelegramChannel {
	c := &TelegramChannel{
		token:  testToken,
		events: events,
		mode:   ModeWebhook,
	}
	c.webhookURL = joinURL("https://gateway.example.com", WebhookPath(testToken))
	return c
}

func TestWebhookHandler_ValidUpdatePublishes(t *testing.T) {
	events := bus.NewEventBus()
	defer events.Close()
	c := newWebhookChannel(events)
	c.running.Store(true)

	body := `{"update_id":1,"message":{"message_id":1,"date":0,"text":"/start","chat":{"id":42,"type":"private"},"from":{"id":42,"is_bot":false,"first_name":"Alice"}}}`
	req := httptest.NewRequest("POST", WebhookPath(testToken), strings.NewReader(body))
	rec := httptest.NewRecorder()

	c.WebhookHandler()(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, ok := events.Consume(ctx)
	if !ok {
		t.Fatal("expected event on the bus")
	}
	if ev.Kind != bus.KindCommand || ev.Command != "start" || ev.ChatID != 42 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestWebhookHandler_MalformedPayloadStillAccepted(t *testing.T) {
	events := bus.NewEventBus()
	defer events.Close()
	c := newWebhookChannel(events)
	c.running.Store(true)

	req := httptest.NewRequest("POST", WebhookPath(testToken), strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	c.WebhookHandler()(rec, req)

	if rec.Code != 200 {
		t.Fatalf("malformed payload must not trigger platform retries, got %d", rec.Code)
	}
}

func TestWebhookHandler_RejectsWhenStopped(t *testing.T) {
	events := bus.NewEventBus()
	defer events.Close()
	c := newWebhookChannel(events)

	req := httptest.NewRequest("POST", WebhookPath(testToken), strings.NewReader("{}"))
	rec := httptest.NewRecorder()

	c.WebhookHandler()(rec, req)

	if rec.Code != 503 {
		t.Fatalf("expected 503 before start, got %d", rec.Code)
	}
}

func TestHTTPPath_EmbedsToken(t *testing.T) {
	c := newWebhookChannel(bus.NewEventBus())
	if c.HTTPPath() != "/webhook/"+testToken {
		t.Fatalf("unexpected webhook path %q", c.HTTPPath())
	}
}

type fakeWebhookAPI struct {
	calls []string
	urls  []string
	info  telego.WebhookInfo
}

func (f *fakeWebhookAPI) SetWebhook(_ context.Context, params *telego.SetWebhookParams) error {
	f.calls = append(f.calls, "set")
	f.urls = append(f.urls, params.URL)
	f.info.URL = params.URL
	return nil
}

func (f *fakeWebhookAPI) DeleteWebhook(_ context.Context, _ *telego.DeleteWebhookParams) error {
	f.calls = append(f.calls, "delete")
	f.info.URL = ""
	return nil
}

func (f *fakeWebhookAPI) GetWebhookInfo(_ context.Context) (*telego.WebhookInfo, error) {
	f.calls = append(f.calls, "info")
	info := f.info
	return &info, nil
}

func TestRegisterWebhook_DeleteThenSet(t *testing.T) {
	api := &fakeWebhookAPI{}
	c := newWebhookChannel(bus.NewEventBus())
	c.api = api

	c.registerWebhook(context.Background())

	if len(api.calls) < 2 || api.calls[0] != "delete" || api.calls[1] != "set" {
		t.Fatalf("expected delete then set, got %v", api.calls)
	}
	if !c.registered.Load() {
		t.Fatal("expected registered state after successful registration")
	}
	if api.info.URL != c.webhookURL {
		t.Fatalf("expected platform to hold %q, got %q", c.webhookURL, api.info.URL)
	}
}

func TestRegisterWebhook_RerunConvergesToSingleTarget(t *testing.T) {
	api := &fakeWebhookAPI{}
	c := newWebhookChannel(bus.NewEventBus())
	c.api = api

	c.registerWebhook(context.Background())
	c.registerWebhook(context.Background())

	if len(api.urls) != 2 || api.urls[0] != api.urls[1] {
		t.Fatalf("expected both registrations to target the same URL, got %v", api.urls)
	}
	if api.info.URL != c.webhookURL {
		t.Fatalf("expected single final target %q, got %q", c.webhookURL, api.info.URL)
	}
}

func TestVerifyDelivery_ReportsDrift(t *testing.T) {
	api := &fakeWebhookAPI{}
	c := newWebhookChannel(bus.NewEventBus())
	c.api = api
	c.running.Store(true)

	api.info.URL = "https://somewhere-else.example.com/webhook/stale"
	issues := c.VerifyDelivery(context.Background())
	if len(issues) != 1 || !strings.Contains(issues[0], "drift") {
		t.Fatalf("expected drift issue, got %v", issues)
	}

	api.info.URL = c.webhookURL
	if issues := c.VerifyDelivery(context.Background()); len(issues) != 0 {
		t.Fatalf("expected no issues when URL matches, got %v", issues)
	}
}
