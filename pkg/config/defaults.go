package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "barbershop"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingMinDaysAhead = 1
	DefaultBookingOpenTime     = "09:00"
	DefaultBookingCloseTime    = "18:00"
	DefaultBookingSlotMinutes  = 30
	DefaultBookingTimeZone     = "America/Sao_Paulo"
	DefaultStatsWeekStart      = "monday"

	DefaultRedisAddr = ""
	DefaultRedisDB   = 0
	DefaultCacheTTL  = 5 * time.Minute

	DefaultEventsEnabled         = false
	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = "booking-events-dlq"
	DefaultNotifierGroupID       = "booking-notifier"

	DefaultUserServiceURL     = ""
	DefaultUserServiceTimeout = 3 * time.Second
)
