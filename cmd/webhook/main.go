package main

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/deliverytrujillo/dispatch/internal/config"
	"github.com/deliverytrujillo/dispatch/internal/handlers"
	xhttp "github.com/deliverytrujillo/dispatch/pkg/http"
	"github.com/deliverytrujillo/dispatch/pkg/logger"
)

// Standalone receiver for callbacks from the optimization workflow. Kept
// separate from the API so the webhook endpoint can be exposed publicly
// without the rest of the surface.
func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	if config.Get().WebhookAPIKey == "" {
		logger.Error("WEBHOOK_API_KEY must be set; refusing to accept unauthenticated payloads")
		return
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Use(xhttp.TimeoutMiddleware(time.Second * 10))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	store := handlers.NewPayloadStore(config.Get().WebhookDataFile)
	webhookHandler := handlers.NewWebhookHandler(config.Get().WebhookAPIKey, store)
	handlers.RegisterWebhookRoutes(s.Router, webhookHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		var err = s.ListenAndServe(config.Get().WebhookListenAddr)
		if err != nil {
			logger.Error("error in running webhook server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
