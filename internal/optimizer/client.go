package optimizer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// Dispatcher posts an optimization request to the external engine.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload *Payload) error
}

// WebhookError carries the engine's rejection verbatim so operators can see
// what the workflow actually answered.
type WebhookError struct {
	StatusCode int
	Body       string
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("optimizer webhook status %d: %s", e.StatusCode, e.Body)
}

// WebhookClient delivers payloads to the optimization workflow's webhook
// endpoint. Any non-200 answer is a failure; the trigger never retries.
type WebhookClient struct {
	url     string
	apiKey  string
	timeout time.Duration
	client  *fasthttp.Client
}

func NewWebhookClient(url, apiKey string, timeout time.Duration) *WebhookClient {
	return &WebhookClient{
		url:     url,
		apiKey:  apiKey,
		timeout: timeout,
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}

func (c *WebhookClient) Dispatch(ctx context.Context, payload *Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("optimizer encode payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("optimizer webhook request failed: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return &WebhookError{
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}
	return nil
}
