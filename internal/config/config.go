package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/deliverytrujillo/dispatch/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

var config *Config

// Config holds every env-sourced value used by the dispatch service. Only
// this struct should be consulted for configuration; no direct env reads
// elsewhere.
type Config struct {
	AppEnv              string `env:"APP_ENV" default:"dev"`
	AppName             string `env:"APP_NAME" default:"dispatch"`
	AppDebug            bool   `env:"APP_DEBUG" default:"1"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI"`

	HttpListenAddr string `env:"HTTP_LISTEN_ADDR" default:":8080"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE"`

	GeocoderURL      string        `env:"GEOCODER_URL" default:"https://maps.googleapis.com/maps/api/geocode/json"`
	GeocoderAPIKey   string        `env:"GEOCODER_API_KEY"`
	GeocoderTimeout  time.Duration `env:"GEOCODER_TIMEOUT" default:"10s"`
	GeocodeCacheTTL  time.Duration `env:"GEOCODE_CACHE_TTL" default:"168h"`
	GeocodeCacheOff  bool          `env:"GEOCODE_CACHE_OFF"`

	OptimizerWebhookURL string        `env:"OPTIMIZER_WEBHOOK_URL"`
	OptimizerAPIKey     string        `env:"OPTIMIZER_API_KEY"`
	OptimizerTimeout    time.Duration `env:"OPTIMIZER_TIMEOUT" default:"30s"`
	OptimizerPollDelay  time.Duration `env:"OPTIMIZER_POLL_DELAY" default:"5s"`

	WebhookListenAddr string `env:"WEBHOOK_LISTEN_ADDR" default:":8501"`
	WebhookAPIKey     string `env:"WEBHOOK_API_KEY"`
	WebhookDataFile   string `env:"WEBHOOK_DATA_FILE" default:"webhook_data.json"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.New("failed to map env variables to Configuration object error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the loaded config. Test helper.
func Set(c *Config) {
	config = c
}
