package main

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/deliverytrujillo/dispatch/internal/config"
	"github.com/deliverytrujillo/dispatch/internal/geocode"
	"github.com/deliverytrujillo/dispatch/internal/handlers"
	"github.com/deliverytrujillo/dispatch/internal/optimizer"
	"github.com/deliverytrujillo/dispatch/internal/repository"
	"github.com/deliverytrujillo/dispatch/internal/services"
	xhttp "github.com/deliverytrujillo/dispatch/pkg/http"
	"github.com/deliverytrujillo/dispatch/pkg/logger"
	"github.com/deliverytrujillo/dispatch/pkg/pg"
	"github.com/deliverytrujillo/dispatch/pkg/prom"
	"github.com/deliverytrujillo/dispatch/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 60))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	if config.Get().PromNamespace != "" {
		host, _ := os.Hostname()
		if err := prom.Create(host, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Error("failed registering metrics", "error", err)
			return
		}
		if config.Get().AppDebugMetricsAddr != "" {
			go prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
		}
	}

	// geocoding: provider behind the redis cache, then the district table,
	// then jitter near the city center
	geocoder := geocode.NewGoogleClient(
		config.Get().GeocoderURL,
		config.Get().GeocoderAPIKey,
		config.Get().GeocoderTimeout,
	)
	cache := geocode.NewNoopCache()
	if !config.Get().GeocodeCacheOff {
		redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
			Addrs:      []string{config.Get().RedisAddr},
			ClientName: "default",
			DB:         config.Get().RedisDatabase,
			Username:   config.Get().RedisUsername,
			Password:   config.Get().RedisPassword,
		})
		if err != nil {
			logger.Error("failed connecting to redis", "error", err)
			return
		}
		cache = geocode.NewRedisCache(redisAdap, config.Get().GeocodeCacheTTL)
	}
	resolver := geocode.NewDefaultResolver(geocoder, cache)

	deliveryRepo := repository.NewDeliveryRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	routeRepo := repository.NewRouteRepository(db)

	trigger := optimizer.NewTrigger(
		optimizer.NewWebhookClient(
			config.Get().OptimizerWebhookURL,
			config.Get().OptimizerAPIKey,
			config.Get().OptimizerTimeout,
		),
		routeRepo,
		config.Get().OptimizerPollDelay,
	)

	// services
	deliveryService := services.NewDeliveryService(deliveryRepo, resolver)
	fleetService := services.NewFleetService(vehicleRepo, driverRepo)
	routeService := services.NewRouteService(routeRepo, deliveryRepo)
	optimizeService := services.NewOptimizeService(trigger, deliveryRepo, routeRepo)
	dashboardService := services.NewDashboardService(deliveryRepo, driverRepo, routeRepo)
	healthService := services.NewHealthService(db)

	// v1 handlers
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)
	fleetHandler := handlers.NewFleetHandler(fleetService, dashboardService)
	routeHandler := handlers.NewRouteHandler(routeService)
	optimizeHandler := handlers.NewOptimizeHandler(optimizeService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterDeliveryRoutes(g, deliveryHandler)
	handlers.RegisterFleetRoutes(g, fleetHandler)
	handlers.RegisterRouteRoutes(g, routeHandler)
	handlers.RegisterOptimizeRoutes(g, optimizeHandler)
	handlers.RegisterDashboardRoutes(g, dashboardHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
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
