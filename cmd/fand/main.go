package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fan-control-backend/config"
	"fan-control-backend/internal/api"
	"fan-control-backend/internal/db"
	"fan-control-backend/internal/device"
	"fan-control-backend/internal/fan"
	"fan-control-backend/internal/publish"
	"fan-control-backend/internal/store"
)

func createLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if os.Getenv("FAN_DEBUG") != "" {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Panic("Cannot initialize logger.", err)
	}
	return logger
}

func main() {
	logger := createLogger()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		sugar.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	sugar.Infow("configuration loaded", "path", configPath, "device", cfg.Device.Address)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		sugar.Fatalf("failed to initialize database: %v", err)
	}
	journal := store.NewGormStore(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := fan.Options{
		BaseStep:  cfg.Animation.BaseStep,
		EaseOut:   cfg.Animation.EaseOut,
		Scheduler: fan.NewTimerScheduler(cfg.Animation.FrameInterval),
	}

	var publisher *publish.WorkerPool
	if cfg.MQTT.Broker != "" {
		mqttClient, err := publish.Connect(cfg.MQTT)
		if err != nil {
			sugar.Fatalf("failed to connect to MQTT broker %s: %v", cfg.MQTT.Broker, err)
		}
		defer mqttClient.Disconnect(250)

		publisher = publish.NewWorkerPool(cfg.Publisher.Size, publish.NewMQTTSender(mqttClient, cfg.MQTT.TopicPrefix))
		publisher.Start(ctx)
		opts.Observer = publisher
	} else {
		sugar.Info("MQTT broker not configured; state mirror disabled")
	}

	client := device.NewClient(cfg.Device, journal)
	panel := fan.NewPanel(client, opts)

	router := api.NewRouter(panel, journal, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		sugar.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	sugar.Info("Shutdown signal received, stopping services...")

	// Closing the panel first ends the animation loop and every open stream.
	panel.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Errorf("HTTP server Shutdown: %v", err)
	}

	cancel()
	if publisher != nil {
		publisher.Wait()
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
	sugar.Info("Server gracefully stopped")
}
