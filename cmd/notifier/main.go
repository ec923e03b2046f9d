package main

import (
	"context"

	"barbershop/internal/notifications"
	"barbershop/pkg/app"
	"barbershop/pkg/cache"
	"barbershop/pkg/client"
	"barbershop/pkg/config"
	"barbershop/pkg/kafka"
	kafka_config "barbershop/pkg/kafka/config"
	kafka_middleware "barbershop/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	cfg.SetRedis()

	users := client.NewUserDirectory(cfg.UserServiceURL, cfg.UserServiceTimeout)
	h := notifications.NewHandler(users, notifications.NewLogSender(cfg.Log), deliveryLog(cfg), cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.Log,
		cfg.BookingEventsTopic,
		cfg.NotifierGroupID,
		cfg.BookingEventsDLQTopic,
		h.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafka_middleware.GetMetrics()
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware(metrics))

	serverApp := app.NewApplication(cfg)
	serverApp.AddWorker("booking-events-consumer", func(ctx context.Context) error {
		return consumer.Start(ctx)
	})
	serverApp.OnShutdown(func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
		metrics.LogMetrics(cfg.Log)
	})

	cfg.Log.Info("Starting notifier", "topic", cfg.BookingEventsTopic, "group_id", cfg.NotifierGroupID)
	serverApp.SetApp()
	serverApp.Run()
}

// deliveryLog is shared across notifier replicas when Redis is configured.
func deliveryLog(cfg *config.Config) cache.Cache {
	if cfg.Client.Redis != nil {
		return cache.New(cfg.Client.Redis)
	}
	return cache.NewMemory()
}
