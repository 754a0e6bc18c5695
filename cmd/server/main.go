package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"backofficeWs/internal/config"
	collectionusecase "backofficeWs/internal/modules/collection/application/usecase"
	collectiondomain "backofficeWs/internal/modules/collection/domain"
	collectioninfra "backofficeWs/internal/modules/collection/infrastructure"
	formsusecase "backofficeWs/internal/modules/forms/application/usecase"
	"backofficeWs/internal/modules/realtime/application/handler"
	"backofficeWs/internal/modules/realtime/application/usecase"
	"backofficeWs/internal/modules/realtime/infrastructure"
	transport "backofficeWs/internal/modules/realtime/interface"
	"backofficeWs/internal/platform/broker"
	"backofficeWs/internal/shared/auth"
	"backofficeWs/internal/shared/logging"
)

func main() {
	// Attempt to load variables from .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))
	slog.Info("upstream config resolved", slog.String("baseUrl", cfg.REST.BaseURL), slog.Duration("timeout", cfg.REST.Timeout))
	slog.Info("kafka config resolved", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", cfg.Kafka.GroupID), slog.Any("topics", cfg.Kafka.Topics))

	hub := infrastructure.NewHub()
	registry := infrastructure.NewHandlerRegistry()
	validator := auth.NewJWTValidator(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey, cfg.Security.AllowedRoles...)

	// Upstream adapters
	rest := collectioninfra.NewRESTClient(cfg.REST.BaseURL, cfg.REST.Timeout, nil)
	collections := collectioninfra.NewCollectionHTTPClient(rest)
	mutations := collectioninfra.NewMutationHTTPClient(rest)

	// Use cases
	views := collectionusecase.NewViewRegistry()
	detail := collectionusecase.NewDetailLookup(collections, cfg.Views.DetailCacheMax, cfg.Views.DetailCacheTTL)
	broadcastUC := usecase.NewBroadcastUseCase(hub)
	limiter := infrastructure.NewMutationLimiter(cfg.Websocket.MutationsPerMinute)
	connectUC := usecase.NewConnectCollectionUseCase(validator, collections, mutations, detail, views, limiter, usecase.ViewSettings{
		SearchDelay:   cfg.Views.SearchDelay,
		RedirectDelay: cfg.Views.RedirectDelay,
		LoginPath:     cfg.Views.LoginPath,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// REST mutations reload every open view of the collection, like a change event.
	onMutated := func(collection, _ string) {
		detail.Invalidate(collection)
		go func() {
			reloadCtx, cancel := context.WithTimeout(ctx, cfg.REST.Timeout+5*time.Second)
			defer cancel()
			views.ReloadCollection(reloadCtx, collection)
		}()
	}
	submitter := formsusecase.NewSubmitter(mutations, onMutated)

	// One change-event handler per collection, fed by Kafka and by POST /api/admin/events.
	for _, collection := range collectiondomain.Names() {
		registry.Register(handler.NewCollectionEventHandler(collection, cfg.Websocket.AllowedActions, broadcastUC, views, detail))
	}
	started := broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topics)
	slog.Info("kafka consumers started", slog.Int("count", started))

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())

	wsHandler := transport.NewWebsocketHandler(hub, connectUC, transport.WebsocketOptions{
		AllowedActions: cfg.Websocket.AllowedActions,
		SendBuffer:     cfg.Websocket.SendBuffer,
		AutoLoad:       cfg.Websocket.AutoLoad,
	})
	e.GET("/ws/admin/events", transport.NewEventsWebsocketHandler(hub, validator, cfg.Websocket.SendBuffer))
	e.GET("/ws/admin/:collection/:token", wsHandler)
	e.GET("/ws/admin/:collection", wsHandler)

	admin := &transport.AdminHandlers{
		Fetcher:   collections,
		Sender:    mutations,
		Uploader:  mutations,
		Submitter: submitter,
		OnMutated: onMutated,
		Views:     views,
		Hub:       hub,
	}
	api := e.Group("/api/admin", transport.RequireStaff(validator))
	api.POST("/events", transport.NewEventsHTTPHandler(registry))
	api.POST("/forms/:form", admin.SubmitForm)
	api.POST("/products/bulk-upload", admin.BulkUpload)
	api.GET("/:collection", admin.List)
	api.POST("/:collection/:action", admin.Mutate)
	api.POST("/:collection/:id/:action", admin.Mutate)
	e.GET("/healthz", admin.Health)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown error", slog.Any("error", err))
		_ = e.Close()
	}
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	file, err := logging.OpenDailyFile(cfg.Directory, time.Now())
	if err != nil {
		return nil, nil, err
	}

	writer := io.MultiWriter(os.Stdout, file)
	logger := logging.New(writer, logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: true,
	})
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}
