package main

import (
	barberhandler "barbershop/internal/barbers/handler"
	barberrepo "barbershop/internal/barbers/repository"
	barberservice "barbershop/internal/barbers/service"
	barbervalidator "barbershop/internal/barbers/validator"
	"barbershop/internal/bookings/assignment"
	"barbershop/internal/bookings/events"
	"barbershop/internal/bookings/handler"
	"barbershop/internal/bookings/repository"
	"barbershop/internal/bookings/service"
	"barbershop/internal/bookings/validator"
	cataloghandler "barbershop/internal/catalog/handler"
	catalogrepo "barbershop/internal/catalog/repository"
	catalogservice "barbershop/internal/catalog/service"
	"barbershop/pkg/app"
	"barbershop/pkg/cache"
	"barbershop/pkg/client"
	"barbershop/pkg/config"
	"barbershop/pkg/kafka"
	kafka_config "barbershop/pkg/kafka/config"
	kafka_middleware "barbershop/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")

	serverApp := app.NewApplication(cfg)
	publisher := initPublisher(cfg)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
		kafka_middleware.GetMetrics().LogMetrics(cfg.Log)
	})

	catalogHandler, bookingHandler, barberHandler := initHandlers(cfg, publisher)
	serverApp.SetApp(catalogHandler, barberHandler, bookingHandler)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, publisher events.Publisher) (*cataloghandler.CatalogHandler, *handler.BookingHandler, *barberhandler.BarberHandler) {
	c := cache.New(cfg.Client.Redis)
	users := client.NewUserDirectory(cfg.UserServiceURL, cfg.UserServiceTimeout)

	catalogService := catalogservice.NewCatalogService(catalogrepo.NewMongoServiceRepository(cfg), c, cfg)

	barberService := barberservice.NewBarberService(
		barberrepo.NewMongoBarberRepository(cfg),
		barbervalidator.NewBarberValidator(cfg.Log),
		users,
		c,
		cfg,
	)

	bookingRepo := repository.NewMongoBookingRepository(cfg)
	resolver := assignment.NewResolver(barberService, bookingRepo, cfg.Log)
	bookingService := service.NewBookingService(
		bookingRepo,
		catalogService,
		resolver,
		users,
		publisher,
		validator.NewBookingValidator(cfg.Log, validator.PolicyFromConfig(cfg)),
		cfg,
	)

	cfg.Log.Info("Booking engine initialized", "database", cfg.MongoDatabaseName)
	return cataloghandler.NewCatalogHandler(catalogService, cfg.Log),
		handler.NewBookingHandler(bookingService, cfg.Log),
		barberhandler.NewBarberHandler(barberService, cfg.Log)
}

// initPublisher falls back to a no-op publisher when events are disabled or
// the broker configuration is unusable; bookings never depend on delivery.
func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Error("Invalid Kafka configuration, booking events disabled", "error", err)
		return events.NopPublisher{}
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic)
	if err != nil {
		cfg.Log.Error("Failed to create Kafka producer, booking events disabled", "error", err)
		return events.NopPublisher{}
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware(kafka_middleware.GetMetrics()))

	cfg.Log.Info("Booking events enabled", "topic", cfg.BookingEventsTopic)
	return events.NewKafkaPublisher(producer)
}
