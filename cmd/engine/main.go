package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-polyline"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Standalone simulator of the external optimization engine, for local
// development and demos. It accepts the trigger webhook, pretends to
// optimize for a moment, and writes an optimized_routes row echoing the
// request_id so the API's poll can correlate it.

// OptimizePayload mirrors the trigger webhook body.
type OptimizePayload struct {
	DeliveryIDs []int64 `json:"delivery_ids" binding:"required"`
	Parameters  struct {
		OptimizationType string `json:"optimization_type"`
		VehicleID        *int64 `json:"vehicle_id"`
		DriverID         *int64 `json:"driver_id"`
		RouteDate        string `json:"route_date"`
		MaxWaypoints     int    `json:"max_waypoints"`
	} `json:"parameters"`
	Metadata struct {
		RequestedBy string `json:"requested_by"`
		RequestedAt string `json:"requested_at"`
		Location    string `json:"location"`
		RequestID   string `json:"request_id"`
	} `json:"metadata"`
}

// RouteRow is the optimized_routes row the simulator produces.
type RouteRow struct {
	ID                       int64   `gorm:"column:id;primaryKey"`
	RouteName                string  `gorm:"column:route_name"`
	TotalDistanceKm          float64 `gorm:"column:total_distance_km"`
	EstimatedDurationMinutes int     `gorm:"column:estimated_duration_minutes"`
	RouteStatus              string  `gorm:"column:route_status"`
	Polyline                 string  `gorm:"column:polyline"`
	Metadata                 string  `gorm:"column:metadata;type:jsonb"`
}

func (RouteRow) TableName() string { return "optimized_routes" }

// RouteStore persists simulated routes.
type RouteStore interface {
	CreateRoute(row *RouteRow) error
}

type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) CreateRoute(row *RouteRow) error {
	return s.db.Create(row).Error
}

// MockEngine simulates the optimization workflow: a processing delay and an
// occasional failure.
type MockEngine struct {
	failureRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
	engineID    string
	rng         *rand.Rand
}

func NewMockEngine(failureRate float64, minDelay, maxDelay time.Duration) *MockEngine {
	return &MockEngine{
		failureRate: failureRate,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		engineID:    fmt.Sprintf("MOCK_ENGINE_%04d", rand.Intn(10000)),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// optimize fakes the route computation: it sleeps for the configured
// processing window and produces a row covering the requested deliveries.
func (e *MockEngine) optimize(p *OptimizePayload) (*RouteRow, error) {
	time.Sleep(e.randomDelay())

	if e.rng.Float64() < e.failureRate {
		return nil, fmt.Errorf("engine run failed")
	}

	meta, err := json.Marshal(map[string]any{
		"request_id":     p.Metadata.RequestID,
		"delivery_count": len(p.DeliveryIDs),
		"engine_id":      e.engineID,
	})
	if err != nil {
		return nil, err
	}

	row := &RouteRow{
		RouteName:                fmt.Sprintf("Ruta Trujillo %s (%d paradas)", time.Now().Format("2006-01-02 15:04"), len(p.DeliveryIDs)),
		TotalDistanceKm:          2 + e.rng.Float64()*18,
		EstimatedDurationMinutes: 10 + e.rng.Intn(110),
		RouteStatus:              "planned",
		Polyline:                 e.fakePolyline(len(p.DeliveryIDs)),
		Metadata:                 string(meta),
	}
	return row, nil
}

// fakePolyline draws a plausible path: jittered stops around the Trujillo
// city center, encoded the way the real engine encodes its geometry.
func (e *MockEngine) fakePolyline(stops int) string {
	coords := make([][]float64, 0, stops+1)
	coords = append(coords, []float64{-8.1092, -79.0215})
	for i := 0; i < stops; i++ {
		coords = append(coords, []float64{
			-8.1092 + (e.rng.Float64()*2-1)*0.03,
			-79.0215 + (e.rng.Float64()*2-1)*0.03,
		})
	}
	return string(polyline.EncodeCoords(coords))
}

func (e *MockEngine) randomDelay() time.Duration {
	delta := e.maxDelay - e.minDelay
	if delta <= 0 {
		return e.minDelay
	}
	return e.minDelay + time.Duration(e.rng.Int63n(int64(delta)))
}

// Handler wires the mock engine and its store into HTTP routes.
type Handler struct {
	engine *MockEngine
	store  RouteStore
	apiKey string
}

func NewHandler(engine *MockEngine, store RouteStore, apiKey string) *Handler {
	return &Handler{engine: engine, store: store, apiKey: apiKey}
}

// Optimize handles the trigger webhook. Processing is synchronous; the
// caller's own poll delay covers the simulated run time.
func (h *Handler) Optimize(c *gin.Context) {
	if h.apiKey != "" && c.GetHeader("X-API-KEY") != h.apiKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}

	var payload OptimizePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": err.Error(),
		})
		return
	}

	log.Info().
		Str("request_id", payload.Metadata.RequestID).
		Int("deliveries", len(payload.DeliveryIDs)).
		Str("requested_by", payload.Metadata.RequestedBy).
		Msg("optimization requested")

	row, err := h.engine.optimize(&payload)
	if err != nil {
		log.Warn().
			Str("request_id", payload.Metadata.RequestID).
			Err(err).
			Msg("optimization run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.CreateRoute(row); err != nil {
		log.Error().Err(err).Msg("failed to persist route")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist route"})
		return
	}

	log.Info().
		Str("request_id", payload.Metadata.RequestID).
		Str("route_name", row.RouteName).
		Float64("distance_km", row.TotalDistanceKm).
		Msg("route created")

	c.JSON(http.StatusOK, gin.H{
		"status":     "accepted",
		"request_id": payload.Metadata.RequestID,
		"route_name": row.RouteName,
		"engine_id":  h.engine.engineID,
	})
}

// HealthCheck reports the simulator's state.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"engine_id":    h.engine.engineID,
		"failure_rate": h.engine.failureRate,
		"timestamp":    time.Now(),
	})
}

// UpdateConfig allows changing the failure rate at runtime.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		FailureRate *float64 `json:"failure_rate"`
	}
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.FailureRate != nil {
		if *config.FailureRate >= 0 && *config.FailureRate <= 1.0 {
			h.engine.failureRate = *config.FailureRate
			log.Info().Float64("rate", *config.FailureRate).Msg("updated failure rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "configuration updated",
		"failure_rate": h.engine.failureRate,
	})
}

// SetupRouter configures all routes.
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request processed")
	})

	router.POST("/webhook/optimize", handler.Optimize)
	router.PUT("/config", handler.UpdateConfig)
	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8502")
	apiKey := getEnv("ENGINE_API_KEY", "")
	failureRate := getEnvFloat("FAILURE_RATE", 0)
	minDelay := getEnvDuration("MIN_DELAY", 1*time.Second)
	maxDelay := getEnvDuration("MAX_DELAY", 3*time.Second)

	dsn := getEnv("ENGINE_POSTGRES_DSN",
		"host=localhost port=5432 user=postgres password=postgres dbname=dispatch sslmode=disable")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	log.Info().
		Str("port", port).
		Float64("failure_rate", failureRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("starting mock optimization engine")

	engine := NewMockEngine(failureRate, minDelay, maxDelay)
	handler := NewHandler(engine, &gormStore{db: db}, apiKey)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
