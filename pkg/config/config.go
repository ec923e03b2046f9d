package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"barbershop/pkg/client"
	"barbershop/pkg/logger"

	"github.com/joho/godotenv"
)

var (
	clockRegex    = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	mongoURIRegex = regexp.MustCompile(`^mongodb(\+srv)?://`)
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	BookingMinDaysAhead int
	BookingOpenTime     string
	BookingCloseTime    string
	BookingSlotMinutes  int
	BookingTimeZone     string
	StatsWeekStart      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	EventsEnabled         bool
	BookingEventsTopic    string
	BookingEventsDLQTopic string
	NotifierGroupID       string

	UserServiceURL     string
	UserServiceTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		BookingMinDaysAhead: getEnvNum(EnvBookingMinDaysAhead, DefaultBookingMinDaysAhead),
		BookingOpenTime:     getEnvStr(EnvBookingOpenTime, DefaultBookingOpenTime),
		BookingCloseTime:    getEnvStr(EnvBookingCloseTime, DefaultBookingCloseTime),
		BookingSlotMinutes:  getEnvNum(EnvBookingSlotMinutes, DefaultBookingSlotMinutes),
		BookingTimeZone:     getEnvStr(EnvBookingTimeZone, DefaultBookingTimeZone),
		StatsWeekStart:      getEnvStr(EnvStatsWeekStart, DefaultStatsWeekStart),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),
		CacheTTL:      getEnvDuration(EnvCacheTTL, DefaultCacheTTL),

		EventsEnabled:         getEnvBool(EnvEventsEnabled, DefaultEventsEnabled),
		BookingEventsTopic:    getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		BookingEventsDLQTopic: getEnvStr(EnvBookingEventsDLQTopic, DefaultBookingEventsDLQTopic),
		NotifierGroupID:       getEnvStr(EnvNotifierGroupID, DefaultNotifierGroupID),

		UserServiceURL:     strings.TrimSuffix(getEnvStr(EnvUserServiceURL, DefaultUserServiceURL), "/"),
		UserServiceTimeout: getEnvDuration(EnvUserServiceTimeout, DefaultUserServiceTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the shared cache. It is a no-op when REDIS_ADDR is empty.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		cfg.Log.Info("Redis address not set, caching disabled")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

// Location is the shop's time zone; dates and times of bookings are civil values in it.
func (cfg *Config) Location() *time.Location {
	if cfg.BookingTimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(cfg.BookingTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (cfg *Config) WeekStart() time.Weekday {
	day, ok := parseWeekday(cfg.StatsWeekStart)
	if !ok {
		return time.Monday
	}
	return day
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positive := map[string]time.Duration{
		"MongoConnTimeout": cfg.MongoConnTimeout,
		"RateLimitWindow":  cfg.RateLimitWindow,
		"RequestTimeout":   cfg.RequestTimeout,
		"IdempotencyTTL":   cfg.IdempotencyTTL,
		"ReadTimeout":      cfg.ReadTimeout,
		"WriteTimeout":     cfg.WriteTimeout,
		"IdleTimeout":      cfg.IdleTimeout,
		"ShutdownTimeout":  cfg.ShutdownTimeout,
		"CacheTTL":         cfg.CacheTTL,
	}
	for _, name := range sortedKeys(positive) {
		if positive[name] <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, positive[name]))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.BookingMinDaysAhead < 0 {
		errors = append(errors, fmt.Sprintf("BookingMinDaysAhead cannot be negative, got: %d", cfg.BookingMinDaysAhead))
	}
	openOK := clockRegex.MatchString(cfg.BookingOpenTime)
	closeOK := clockRegex.MatchString(cfg.BookingCloseTime)
	if !openOK {
		errors = append(errors, fmt.Sprintf("BookingOpenTime must be in HH:MM format (00:00-23:59), got: %s", cfg.BookingOpenTime))
	}
	if !closeOK {
		errors = append(errors, fmt.Sprintf("BookingCloseTime must be in HH:MM format (00:00-23:59), got: %s", cfg.BookingCloseTime))
	}
	if openOK && closeOK && cfg.BookingCloseTime <= cfg.BookingOpenTime {
		errors = append(errors, fmt.Sprintf("BookingCloseTime (%s) must be after BookingOpenTime (%s)", cfg.BookingCloseTime, cfg.BookingOpenTime))
	}
	if cfg.BookingSlotMinutes <= 0 || 60%cfg.BookingSlotMinutes != 0 {
		errors = append(errors, fmt.Sprintf("BookingSlotMinutes must be a positive divisor of 60, got: %d", cfg.BookingSlotMinutes))
	}
	if _, err := time.LoadLocation(cfg.BookingTimeZone); err != nil || cfg.BookingTimeZone == "" {
		errors = append(errors, fmt.Sprintf("BookingTimeZone must be a valid IANA zone, got: %q", cfg.BookingTimeZone))
	}
	if _, ok := parseWeekday(cfg.StatsWeekStart); !ok {
		errors = append(errors, fmt.Sprintf("StatsWeekStart must be a weekday name, got: %s", cfg.StatsWeekStart))
	}

	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if cfg.EventsEnabled && cfg.BookingEventsTopic == "" {
		errors = append(errors, "BookingEventsTopic cannot be empty when events are enabled")
	}
	if cfg.UserServiceURL != "" && !strings.HasPrefix(cfg.UserServiceURL, "http") {
		errors = append(errors, fmt.Sprintf("UserServiceURL must be an http(s) URL, got: %s", cfg.UserServiceURL))
	}
	if cfg.UserServiceTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("UserServiceTimeout must be positive, got: %s", cfg.UserServiceTimeout))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"booking_min_days_ahead", cfg.BookingMinDaysAhead,
		"booking_open_time", cfg.BookingOpenTime,
		"booking_close_time", cfg.BookingCloseTime,
		"booking_slot_minutes", cfg.BookingSlotMinutes,
		"booking_timezone", cfg.BookingTimeZone,
		"stats_week_start", cfg.StatsWeekStart,
		"redis_enabled", cfg.RedisAddr != "",
		"cache_ttl", cfg.CacheTTL,
		"events_enabled", cfg.EventsEnabled,
		"booking_events_topic", cfg.BookingEventsTopic,
		"user_service_url", cfg.UserServiceURL,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func parseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d, true
		}
	}
	return time.Monday, false
}

func sortedKeys(m map[string]time.Duration) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
