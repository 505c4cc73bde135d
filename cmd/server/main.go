package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"brewtab/internal/config"
	"brewtab/internal/events"
	"brewtab/internal/infrastructure/logger"
	"brewtab/internal/infrastructure/mysql"
	"brewtab/internal/infrastructure/rabbitmq"
	"brewtab/internal/inventory"
	"brewtab/internal/order"
	"brewtab/internal/server"
	"brewtab/internal/shift"
)

func main() {
	// Missing .env is fine; config falls back to env vars and defaults.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if cfg.Database.Migrate {
		if err := mysql.RunMigrations(db, cfg.Database.MigrationsPath, cfg.Database.Name); err != nil {
			zapLogger.Fatal("running migrations", zap.Error(err))
		}
		zapLogger.Info("migrations applied")
	}

	mq, err := rabbitmq.Dial(cfg.RabbitMQ)
	if err != nil {
		zapLogger.Fatal("connecting to rabbitmq", zap.Error(err))
	}
	defer mq.Close()
	zapLogger.Info("rabbitmq connected")

	notifier := events.NewNotifier(mq, cfg.Events.BufferSize, zapLogger)
	defer notifier.Close()

	inventoryLedger, inventoryCtrl := inventory.NewModule(db, zapLogger)
	shiftLedger, shiftCtrl := shift.NewModule(db, zapLogger, cfg.Order.TxTimeout)
	orderCtrl := order.NewModule(db, cfg, zapLogger, notifier, inventoryLedger, shiftLedger)

	router := server.NewRouter(orderCtrl, shiftCtrl, inventoryCtrl, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
