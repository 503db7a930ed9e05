package miniapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAuthenticate_RejectsMissingFields(t *testing.T) {
	g := NewGateway()

	reqs := []AuthRequest{
		{},
		{CardNumber: "1234"},
		{BirthDate: "1990-01-01"},
		{CardNumber: "  ", BirthDate: "1990-01-01", TelegramUserID: "42"},
	}
	for _, req := range reqs {
		res := g.Authenticate(context.Background(), req)
		if res.Authorized {
			t.Fatalf("request %+v: expected rejection", req)
		}
		if res.Reason != ReasonMissingFields {
			t.Fatalf("request %+v: expected reason %q, got %q", req, ReasonMissingFields, res.Reason)
		}
	}
}

func TestAuthenticate_CompleteRequestAuthorized(t *testing.T) {
	g := NewGateway()

	res := g.Authenticate(context.Background(), AuthRequest{
		CardNumber:     "1234-5678",
		BirthDate:      "1990-01-01",
		TelegramUserID: "42",
	})
	if !res.Authorized {
		t.Fatalf("expected authorization, got %+v", res)
	}
	if res.User.Name != "Test User" || res.User.Balance != 125.50 {
		t.Fatalf("unexpected placeholder profile: %+v", res.User)
	}
	if res.User.CardNumber != "1234-5678" {
		t.Fatalf("expected card number echoed back, got %q", res.User.CardNumber)
	}
}

func TestAuthenticate_TelegramUserIDNotRequired(t *testing.T) {
	g := NewGateway()

	res := g.Authenticate(context.Background(), AuthRequest{
		CardNumber: "1234",
		BirthDate:  "1990-01-01",
	})
	if !res.Authorized {
		t.Fatalf("card number and birth date must suffice, got %+v", res)
	}
}

type failingDirectory struct{}

func (failingDirectory) Lookup(_ context.Context, _ AuthRequest) (AuthUser, error) {
	return AuthUser{}, errors.New("backend unavailable")
}

func TestHandleAuth_DirectoryFailureIs500(t *testing.T) {
	g := NewGatewayWith(failingDirectory{}, nil)

	body := `{"card_number":"1234","birth_date":"1990-01-01"}`
	req := httptest.NewRequest("POST", "/api/auth", strings.NewReader(body))
	rec := httptest.NewRecorder()

	g.HandleAuth(rec, req)

	if rec.Code != 500 {
		t.Fatalf("expected 500 for directory failure, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ReasonLookupFailed) {
		t.Fatalf("expected lookup failure reason, got %s", rec.Body.String())
	}
}

func TestHandleAuth_Success(t *testing.T) {
	g := NewGateway()

	body := `{"card_number":"1234","birth_date":"1990-01-01","telegram_user_id":"42"}`
	req := httptest.NewRequest("POST", "/api/auth", strings.NewReader(body))
	rec := httptest.NewRecorder()

	g.HandleAuth(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool     `json:"success"`
		User    AuthUser `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !resp.Success || resp.User.Name != "Test User" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleAuth_MissingFields(t *testing.T) {
	g := NewGateway()

	req := httptest.NewRequest("POST", "/api/auth", strings.NewReader(`{"card_number":"1234"}`))
	rec := httptest.NewRecorder()

	g.HandleAuth(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Success || resp.Message != ReasonMissingFields {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleAuth_BadBodyAndMethod(t *testing.T) {
	g := NewGateway()

	req := httptest.NewRequest("POST", "/api/auth", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	g.HandleAuth(rec, req)
	if rec.Code != 400 {
		t.Fatalf("expected 400 for bad body, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/api/auth", nil)
	rec = httptest.NewRecorder()
	g.HandleAuth(rec, req)
	if rec.Code != 405 {
		t.Fatalf("expected 405 for GET, got %d", rec.Code)
	}
}

type recordingSink struct {
	events []GameEvent
	err    error
}

func (s *recordingSink) Record(_ context.Context, ev GameEvent) error {
	s.events = append(s.events, ev)
	return s.err
}

func TestHandleGameEvent_ForwardsToSink(t *testing.T) {
	sink := &recordingSink{}
	g := NewGatewayWith(nil, sink)

	body := `{"type":"game_won","score":87}`
	req := httptest.NewRequest("POST", "/api/game-events", strings.NewReader(body))
	rec := httptest.NewRecorder()

	g.HandleGameEvent(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.ID == "" {
		t.Fatal("expected generated event id")
	}
	obj, ok := ev.Payload.(map[string]interface{})
	if !ok || obj["type"] != "game_won" {
		t.Fatalf("payload not forwarded: %+v", ev.Payload)
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !resp.Success || resp.EventID != ev.ID {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Message == "" {
		t.Fatal("expected a message in the success body")
	}
}

func TestHandleGameEvent_AcceptsNonObjectJSON(t *testing.T) {
	sink := &recordingSink{}
	g := NewGatewayWith(nil, sink)

	req := httptest.NewRequest("POST", "/api/game-events", strings.NewReader(`[1,2,3]`))
	rec := httptest.NewRecorder()

	g.HandleGameEvent(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected any well-formed JSON to be accepted, got %d", rec.Code)
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(sink.events))
	}
}

func TestHandleGameEvent_SinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("pipeline down")}
	g := NewGatewayWith(nil, sink)

	req := httptest.NewRequest("POST", "/api/game-events", strings.NewReader(`{"type":"game_won"}`))
	rec := httptest.NewRecorder()

	g.HandleGameEvent(rec, req)

	if rec.Code != 500 {
		t.Fatalf("expected 500 on sink failure, got %d", rec.Code)
	}
}

func TestHandleGameEvent_BadBody(t *testing.T) {
	g := NewGateway()

	req := httptest.NewRequest("POST", "/api/game-events", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	g.HandleGameEvent(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
