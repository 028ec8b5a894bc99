package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/export"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/itinerary"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/mapview"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/places"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/weather"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
	database "github.com/FACorreiaa/loci-itinerary-maps/internal/db"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/pkg/cache"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/pkg/config"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/pkg/logger"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/routes"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/server"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Observability.LogLevel, cfg.Observability.LogFormat,
		zap.String("service", cfg.Observability.ServiceName), zap.String("version", version)); err != nil {
		return err
	}
	l := logger.Log
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := server.InitObservability(cfg.Observability, version, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			l.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	// Database
	dbConfig, err := database.NewDatabaseConfig(cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize database configuration: %w", err)
	}
	pool, err := database.Init(ctx, dbConfig.ConnectionURL, cfg.Repositories.Postgres.MaxConns, cfg.Repositories.Postgres.MinConns, l)
	if err != nil {
		return err
	}
	defer pool.Close()
	if !database.WaitForDB(ctx, pool, l) {
		return fmt.Errorf("database not reachable")
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, l); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Weather
	var weatherCache cache.Cache[models.WeatherReading]
	if addr := cfg.Repositories.Redis.Addr; addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Repositories.Redis.Password,
			DB:       cfg.Repositories.Redis.DB,
		})
		defer rdb.Close()
		weatherCache = cache.NewRedis[models.WeatherReading](rdb, "weather", cfg.Weather.CacheTTL, l)
		l.Info("Weather cache backed by Redis", zap.String("addr", addr))
	} else {
		weatherCache = cache.NewMemory[models.WeatherReading](cfg.Weather.CacheTTL, "weather", l)
	}
	weatherClient := weather.NewOpenWeatherClient(weather.ClientConfig{
		BaseURL:     cfg.Weather.BaseURL,
		APIKey:      cfg.Weather.APIKey,
		CountryCode: cfg.Weather.CountryCode,
		Timeout:     cfg.Weather.Timeout,
		RetryMax:    cfg.Weather.RetryMax,
	}, l)
	weatherService := weather.NewService(weatherClient, weatherCache, l)

	scheduler := cron.New()
	if cfg.Weather.APIKey != "" && cfg.Weather.WarmSchedule != "" {
		warmer := weather.NewWarmer(weatherService, cfg.Weather.WarmPlaces, cfg.Weather.WarmConcurrency, 30*time.Second, l)
		if _, err := warmer.Schedule(ctx, scheduler, cfg.Weather.WarmSchedule); err != nil {
			return err
		}
		go warmer.Run(ctx)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Places and maps
	resolverOpts := []places.Option{}
	if cfg.Map.Seed != 0 {
		resolverOpts = append(resolverOpts, places.WithSeed(cfg.Map.Seed))
	}
	resolver := places.NewResolver(resolverOpts...)
	tiles := models.TileLayer{
		URLTemplate: cfg.Map.TileURL,
		Attribution: cfg.Map.Attribution,
		MaxZoom:     cfg.Map.MaxZoom,
	}
	if err := mapview.ValidateTileTemplate(tiles.URLTemplate); err != nil {
		return err
	}
	renderer := mapview.NewRenderer(mapview.NewViewEngine(tiles), resolver, mapview.Options{
		Center:      places.DefaultCenter,
		Zoom:        cfg.Map.Zoom,
		Padding:     cfg.Map.Padding,
		SettleDelay: cfg.Map.SettleDelay,
		TileLayer:   tiles,
	}, l)

	itineraryService := itinerary.NewService(itinerary.NewRepository(pool, l), resolver, renderer, l)

	// Export
	exportOpts := []export.Option{}
	if m := cfg.Repositories.Minio; m.Endpoint != "" {
		store, err := export.NewMinioStore(export.MinioConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			UseSSL:    m.UseSSL,
			Bucket:    m.Bucket,
			Region:    m.Region,
		}, l)
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx, m.Region); err != nil {
			return err
		}
		exportOpts = append(exportOpts, export.WithStore(store))
	}
	if k := cfg.Repositories.Kafka; k.Broker != "" {
		publisher := export.NewKafkaPublisher(k.Broker, k.Topic, l)
		defer func() {
			if err := publisher.Close(); err != nil {
				l.Warn("Failed to close export publisher", zap.Error(err))
			}
		}()
		exportOpts = append(exportOpts, export.WithPublisher(publisher))
	}
	exportService := export.NewService(l, exportOpts...)

	handlers := &routes.AppHandlers{
		Places:    places.NewHandler(resolver, l),
		Weather:   weather.NewHandler(weatherService, l),
		Itinerary: itinerary.NewHandler(itineraryService, l),
		Export:    export.NewHandler(exportService, itineraryService, nil, l),
	}
	router := server.SetupRouter(cfg, handlers, pool, l)

	pprofSrv := server.StartPprofServer(cfg.Server.PprofPort, l)
	defer func() { _ = pprofSrv.Close() }()

	return server.New(cfg, router, l).Run(ctx)
}
