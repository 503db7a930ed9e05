package channels

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mymmrac/telego"

	"wordlygate/pkg/logger"
)

const maxWebhookBodyBytes = 1 << 20

// WebhookHandler is the push-ingestion endpoint. The platform retries any
// non-2xx response indefinitely, so malformed payloads are logged and
// dropped behind an unconditional 200. Only once shutdown has begun does
// the handler start rejecting.
func (c *TelegramChannel) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !c.running.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
		if err != nil {
			logger.WarnCF("telegram", "Failed to read webhook body", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
			w.WriteHeader(http.StatusOK)
			return
		}

		var update telego.Update
		if err := json.Unmarshal(body, &update); err != nil {
			logger.WarnCF("telegram", "Malformed webhook payload dropped", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
			w.WriteHeader(http.StatusOK)
			return
		}

		c.ingest(update)
		w.WriteHeader(http.StatusOK)
	}
}

// HTTPPath is the mux pattern the webhook handler is mounted on.
func (c *TelegramChannel) HTTPPath() string {
	return WebhookPath(c.token)
}
