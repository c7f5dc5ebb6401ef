package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/fasthttp/router"

	xhttp "github.com/deliverytrujillo/dispatch/pkg/http"
	"github.com/deliverytrujillo/dispatch/pkg/logger"
)

// WebhookHandler receives callbacks from the optimization workflow. Only the
// most recent payload matters; it is kept on disk so a restart does not lose
// the last known engine state.
type WebhookHandler struct {
	apiKey string
	store  *PayloadStore
}

func RegisterWebhookRoutes(r *router.Router, h *WebhookHandler) {
	r.POST("/webhook", h.Receive)
	r.GET("/webhook/latest", h.Latest)
	r.GET("/health", h.GetHealth)
}

func NewWebhookHandler(apiKey string, store *PayloadStore) *WebhookHandler {
	return &WebhookHandler{
		apiKey: apiKey,
		store:  store,
	}
}

type storedPayload struct {
	ReceivedAt time.Time       `json:"received_at"`
	Payload    json.RawMessage `json:"payload"`
}

func (h *WebhookHandler) Receive(ctx *xhttp.RequestCtx) {
	key := ctx.Request.Header.Peek("X-API-KEY")
	if subtle.ConstantTimeCompare(key, []byte(h.apiKey)) != 1 {
		writeError(ctx, 401, "invalid api key")
		return
	}

	body := ctx.PostBody()
	if !json.Valid(body) {
		writeError(ctx, 400, "body must be valid JSON")
		return
	}

	if err := h.store.Save(body); err != nil {
		logger.Error("webhook payload persist failed", "err", err)
		writeError(ctx, 500, "could not persist payload")
		return
	}

	writeJSON(ctx, 200, map[string]string{"status": "received"})
}

func (h *WebhookHandler) Latest(ctx *xhttp.RequestCtx) {
	key := ctx.Request.Header.Peek("X-API-KEY")
	if subtle.ConstantTimeCompare(key, []byte(h.apiKey)) != 1 {
		writeError(ctx, 401, "invalid api key")
		return
	}

	p, err := h.store.Latest()
	if err != nil {
		writeError(ctx, 404, "no payload received yet")
		return
	}
	writeJSON(ctx, 200, p)
}

func (h *WebhookHandler) GetHealth(ctx *xhttp.RequestCtx) {
	ctx.Response.SetBodyString("success")
}

// PayloadStore persists the last received payload to a single file. Writes
// replace the file atomically so a crashed write never leaves half a JSON.
type PayloadStore struct {
	path string
	mu   sync.Mutex
}

func NewPayloadStore(path string) *PayloadStore {
	return &PayloadStore{path: path}
}

func (s *PayloadStore) Save(body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wrapped, err := json.Marshal(storedPayload{
		ReceivedAt: time.Now().UTC(),
		Payload:    body,
	})
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, wrapped, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *PayloadStore) Latest() (*storedPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var p storedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
