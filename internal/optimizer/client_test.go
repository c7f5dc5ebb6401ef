package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// serveWebhook runs handler on an in-process listener and points c at it.
func serveWebhook(t *testing.T, c *WebhookClient, handler fasthttp.RequestHandler) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { ln.Close() })
	c.client.Dial = func(string) (net.Conn, error) { return ln.Dial() }
}

func TestWebhookClient_Dispatch(t *testing.T) {
	var (
		gotMethod      string
		gotKey         string
		gotContentType string
		gotBody        []byte
	)
	c := NewWebhookClient("http://engine.test/webhook/optimize", "secret-key", time.Second)
	serveWebhook(t, c, func(ctx *fasthttp.RequestCtx) {
		gotMethod = string(ctx.Method())
		gotKey = string(ctx.Request.Header.Peek("X-API-KEY"))
		gotContentType = string(ctx.Request.Header.ContentType())
		gotBody = append([]byte(nil), ctx.PostBody()...)
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	payload := &Payload{
		DeliveryIDs: []int64{1, 2},
		Metadata:    Metadata{RequestID: "req-123"},
	}
	require.NoError(t, c.Dispatch(context.Background(), payload))

	assert.Equal(t, fasthttp.MethodPost, gotMethod)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "application/json", gotContentType)

	var decoded Payload
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, []int64{1, 2}, decoded.DeliveryIDs)
	assert.Equal(t, "req-123", decoded.Metadata.RequestID)
}

func TestWebhookClient_Non200CarriesStatusAndBody(t *testing.T) {
	c := NewWebhookClient("http://engine.test/webhook/optimize", "", time.Second)
	serveWebhook(t, c, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusUnprocessableEntity)
		ctx.SetBodyString(`{"message":"workflow is disabled"}`)
	})

	err := c.Dispatch(context.Background(), &Payload{DeliveryIDs: []int64{1}})
	require.Error(t, err)

	var webhookErr *WebhookError
	require.ErrorAs(t, err, &webhookErr)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, webhookErr.StatusCode)
	assert.Equal(t, `{"message":"workflow is disabled"}`, webhookErr.Body)
}

func TestWebhookClient_OmitsKeyHeaderWhenUnset(t *testing.T) {
	keySeen := true
	c := NewWebhookClient("http://engine.test/webhook/optimize", "", time.Second)
	serveWebhook(t, c, func(ctx *fasthttp.RequestCtx) {
		keySeen = len(ctx.Request.Header.Peek("X-API-KEY")) > 0
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	require.NoError(t, c.Dispatch(context.Background(), &Payload{DeliveryIDs: []int64{1}}))
	assert.False(t, keySeen)
}

func TestWebhookClient_ConnectionFailure(t *testing.T) {
	c := NewWebhookClient("http://engine.test/webhook/optimize", "", time.Second)
	c.client.Dial = func(string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}

	err := c.Dispatch(context.Background(), &Payload{DeliveryIDs: []int64{1}})
	require.Error(t, err)

	var webhookErr *WebhookError
	assert.False(t, errors.As(err, &webhookErr))
	assert.Contains(t, err.Error(), "optimizer webhook request failed")
}
