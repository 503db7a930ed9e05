package miniapp

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"wordlygate/pkg/logger"
)

// Gateway is the HTTP-facing surface the mini-app client talks to.
type Gateway struct {
	directory MemberDirectory
	sink      EventSink
}

// NewGateway wires the gateway with its default collaborators: the
// placeholder member directory and the log-backed event sink.
func NewGateway() *Gateway {
	return &Gateway{
		directory: placeholderDirectory{},
		sink:      logSink{},
	}
}

// NewGatewayWith allows substituting collaborators.
func NewGatewayWith(directory MemberDirectory, sink EventSink) *Gateway {
	g := NewGateway()
	if directory != nil {
		g.directory = directory
	}
	if sink != nil {
		g.sink = sink
	}
	return g
}

// HandleAuth serves POST /api/auth.
func (g *Gateway) HandleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
			"success": false,
			"message": "method not allowed",
		})
		return
	}

	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "invalid request body",
		})
		return
	}

	result := g.Authenticate(r.Context(), req)
	if !result.Authorized {
		// Incomplete requests are the client's fault; a failing member
		// directory is ours.
		status := http.StatusBadRequest
		if result.Reason == ReasonLookupFailed {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, map[string]interface{}{
			"success": false,
			"message": result.Reason,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    result.User,
	})
}

// HandleGameEvent serves POST /api/game-events.
func (g *Gateway) HandleGameEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
			"success": false,
			"message": "method not allowed",
		})
		return
	}

	// Any well-formed JSON value is accepted; the payload is opaque here.
	var payload interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "invalid request body",
		})
		return
	}

	ev := GameEvent{ID: uuid.New().String(), Payload: payload}
	if err := g.sink.Record(r.Context(), ev); err != nil {
		logger.ErrorCF("miniapp", "Game event sink failed", map[string]interface{}{
			logger.FieldError:   err.Error(),
			logger.FieldEventID: ev.ID,
		})
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "failed to record event",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Event recorded",
		"event_id": ev.ID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WarnCF("miniapp", "Failed to write response", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}
}
