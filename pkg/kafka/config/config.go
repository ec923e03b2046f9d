package kafka_config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"barbershop/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

const (
	AcksAll    = "all"
	AcksLeader = "leader"
	AcksNone   = "none"

	OffsetNewest = "newest"
	OffsetOldest = "oldest"
)

var (
	acksByName = map[string]kafka.RequiredAcks{
		AcksAll:    kafka.RequireAll,
		AcksLeader: kafka.RequireOne,
		AcksNone:   kafka.RequireNone,
	}
	codecByName = map[string]compress.Compression{
		"none":   compress.None,
		"gzip":   compress.Gzip,
		"snappy": compress.Snappy,
		"lz4":    compress.Lz4,
		"zstd":   compress.Zstd,
	}
	offsetByName = map[string]int64{
		OffsetNewest: kafka.LastOffset,
		OffsetOldest: kafka.FirstOffset,
	}
)

type Config struct {
	Brokers  []string
	Producer ProducerConfig
	Consumer ConsumerConfig
}

type ProducerConfig struct {
	MaxAttempts  int
	BatchTimeout time.Duration
	Acks         string
	Compression  string
}

type ConsumerConfig struct {
	StartOffset       string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	CommitInterval    time.Duration
	HeartbeatInterval time.Duration
	SessionTimeout    time.Duration
	RebalanceTimeout  time.Duration
	MaxRetries        int
}

// RequiredAcks falls back to all replicas for an unknown name.
func (p ProducerConfig) RequiredAcks() kafka.RequiredAcks {
	if acks, ok := acksByName[p.Acks]; ok {
		return acks
	}
	return kafka.RequireAll
}

func (p ProducerConfig) Codec() compress.Compression {
	if codec, ok := codecByName[p.Compression]; ok {
		return codec
	}
	return compress.Snappy
}

// Offset is where a consumer group without committed offsets starts.
func (c ConsumerConfig) Offset() int64 {
	if offset, ok := offsetByName[c.StartOffset]; ok {
		return offset
	}
	return kafka.LastOffset
}

// Load reads the Kafka settings from the environment. Unparsable values are
// reported together with validation problems rather than replaced by defaults.
func Load() (*Config, error) {
	env := &envReader{}

	cfg := &Config{
		Brokers: splitBrokers(env.str(EnvKafkaBrokers, DefaultKafkaBrokers)),
		Producer: ProducerConfig{
			MaxAttempts:  env.int(EnvProducerMaxAttempts, DefaultProducerMaxAttempts),
			BatchTimeout: env.duration(EnvProducerBatchTimeout, DefaultProducerBatchTimeout),
			Acks:         strings.ToLower(env.str(EnvProducerAcks, DefaultProducerAcks)),
			Compression:  strings.ToLower(env.str(EnvProducerCompression, DefaultProducerCompression)),
		},
		Consumer: ConsumerConfig{
			StartOffset:       strings.ToLower(env.str(EnvConsumerStartOffset, DefaultConsumerStartOffset)),
			MinBytes:          env.int(EnvConsumerMinBytes, DefaultConsumerMinBytes),
			MaxBytes:          env.int(EnvConsumerMaxBytes, DefaultConsumerMaxBytes),
			MaxWait:           env.duration(EnvConsumerMaxWait, DefaultConsumerMaxWait),
			CommitInterval:    env.duration(EnvConsumerCommitInterval, DefaultConsumerCommitInterval),
			HeartbeatInterval: env.duration(EnvConsumerHeartbeatInterval, DefaultConsumerHeartbeatInterval),
			SessionTimeout:    env.duration(EnvConsumerSessionTimeout, DefaultConsumerSessionTimeout),
			RebalanceTimeout:  env.duration(EnvConsumerRebalanceTimeout, DefaultConsumerRebalanceTimeout),
			MaxRetries:        env.int(EnvConsumerMaxRetries, DefaultConsumerMaxRetries),
		},
	}

	problems := append(env.problems, cfg.problems()...)
	if len(problems) > 0 {
		return nil, joinProblems(problems)
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if problems := cfg.problems(); len(problems) > 0 {
		return joinProblems(problems)
	}
	return nil
}

func (cfg *Config) problems() []string {
	var problems []string

	if len(cfg.Brokers) == 0 {
		problems = append(problems, "At least one Kafka broker is required")
	}

	if _, ok := acksByName[cfg.Producer.Acks]; !ok {
		problems = append(problems, fmt.Sprintf("Producer.Acks must be one of [all, leader, none], got: %q", cfg.Producer.Acks))
	}
	if _, ok := codecByName[cfg.Producer.Compression]; !ok {
		problems = append(problems, fmt.Sprintf("Producer.Compression must be one of [none, gzip, snappy, lz4, zstd], got: %q", cfg.Producer.Compression))
	}
	if _, ok := offsetByName[cfg.Consumer.StartOffset]; !ok {
		problems = append(problems, fmt.Sprintf("Consumer.StartOffset must be newest or oldest, got: %q", cfg.Consumer.StartOffset))
	}

	positiveInts := map[string]int{
		"Producer.MaxAttempts": cfg.Producer.MaxAttempts,
		"Consumer.MinBytes":    cfg.Consumer.MinBytes,
		"Consumer.MaxBytes":    cfg.Consumer.MaxBytes,
	}
	for _, name := range sortedKeys(positiveInts) {
		if positiveInts[name] <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got: %d", name, positiveInts[name]))
		}
	}
	if cfg.Consumer.MinBytes > cfg.Consumer.MaxBytes {
		problems = append(problems, fmt.Sprintf("Consumer.MinBytes (%d) cannot exceed Consumer.MaxBytes (%d)", cfg.Consumer.MinBytes, cfg.Consumer.MaxBytes))
	}
	if cfg.Consumer.MaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("Consumer.MaxRetries cannot be negative, got: %d", cfg.Consumer.MaxRetries))
	}

	positiveDurations := map[string]time.Duration{
		"Producer.BatchTimeout":      cfg.Producer.BatchTimeout,
		"Consumer.MaxWait":           cfg.Consumer.MaxWait,
		"Consumer.CommitInterval":    cfg.Consumer.CommitInterval,
		"Consumer.HeartbeatInterval": cfg.Consumer.HeartbeatInterval,
		"Consumer.SessionTimeout":    cfg.Consumer.SessionTimeout,
		"Consumer.RebalanceTimeout":  cfg.Consumer.RebalanceTimeout,
	}
	for _, name := range sortedKeys(positiveDurations) {
		if positiveDurations[name] <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got: %s", name, positiveDurations[name]))
		}
	}
	if cfg.Consumer.HeartbeatInterval >= cfg.Consumer.SessionTimeout && cfg.Consumer.SessionTimeout > 0 {
		problems = append(problems, "Consumer.HeartbeatInterval must be shorter than Consumer.SessionTimeout")
	}

	return problems
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded",
		"brokers", cfg.Brokers,
		"producer_max_attempts", cfg.Producer.MaxAttempts,
		"producer_batch_timeout", cfg.Producer.BatchTimeout,
		"producer_acks", cfg.Producer.Acks,
		"producer_compression", cfg.Producer.Compression,
		"consumer_start_offset", cfg.Consumer.StartOffset,
		"consumer_max_wait", cfg.Consumer.MaxWait,
		"consumer_commit_interval", cfg.Consumer.CommitInterval,
		"consumer_session_timeout", cfg.Consumer.SessionTimeout,
		"consumer_max_retries", cfg.Consumer.MaxRetries,
	)
}

func splitBrokers(raw string) []string {
	brokers := make([]string, 0)
	for _, broker := range strings.Split(raw, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

func joinProblems(problems []string) error {
	var b strings.Builder
	b.WriteString("kafka configuration validation failed:\n")
	for i, p := range problems {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
	}
	return fmt.Errorf("%s", b.String())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// envReader records every unparsable variable it is asked for.
type envReader struct {
	problems []string
}

func (e *envReader) str(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func (e *envReader) int(key string, fallback int) int {
	value := e.str(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.problems = append(e.problems, fmt.Sprintf("%s must be an integer, got: %q", key, value))
		return fallback
	}
	return n
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	value := e.str(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.problems = append(e.problems, fmt.Sprintf("%s must be a duration, got: %q", key, value))
		return fallback
	}
	return d
}
