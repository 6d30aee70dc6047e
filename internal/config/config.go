package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka request/assessment pipeline.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Upstream providers.
	PowerBaseURL     string
	PowerTimeout     time.Duration
	PowerRateLimit   float64
	ElevationBaseURL string
	CatalogPath      string

	// Cache.
	CacheEnabled         bool
	CacheWeatherTTL      time.Duration
	CacheHistoryTTL      time.Duration
	CacheEventsTTL       time.Duration
	CacheAssessmentTTL   time.Duration
	CacheCleanupInterval time.Duration

	// Scoring.
	LookbackDays            int
	HistoryYears            int
	RegionalNormalTemp      float64
	LandslideSearchRadiusKm float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "risk-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "risk-assessments"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "climate-risk-engine"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		PowerBaseURL:       sharedcfg.EnvOrDefault("POWER_BASE_URL", "https://power.larc.nasa.gov/api/temporal/daily/point"),
		ElevationBaseURL:   sharedcfg.EnvOrDefault("ELEVATION_BASE_URL", "https://api.open-meteo.com/v1/elevation"),
		CatalogPath:        os.Getenv("CATALOG_PATH"),
	}

	if cfg.KafkaEnabled, err = parseBool("KAFKA_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.CacheEnabled, err = parseBool("CACHE_ENABLED", true); err != nil {
		return nil, err
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"POWER_TIMEOUT", "30s", &cfg.PowerTimeout},
		{"CACHE_WEATHER_TTL", "1h", &cfg.CacheWeatherTTL},
		{"CACHE_HISTORY_TTL", "24h", &cfg.CacheHistoryTTL},
		{"CACHE_EVENTS_TTL", "30m", &cfg.CacheEventsTTL},
		{"CACHE_ASSESSMENT_TTL", "15m", &cfg.CacheAssessmentTTL},
		{"CACHE_CLEANUP_INTERVAL", "5m", &cfg.CacheCleanupInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(sharedcfg.EnvOrDefault(d.key, d.def))
		if err != nil || v <= 0 {
			return nil, errors.New("invalid " + d.key + ": must be a positive duration")
		}
		*d.dst = v
	}

	if cfg.PowerRateLimit, err = parseFloat("POWER_RATE_LIMIT", 2); err != nil || cfg.PowerRateLimit < 0 {
		return nil, errors.New("invalid POWER_RATE_LIMIT: must be a non-negative number")
	}
	if cfg.RegionalNormalTemp, err = parseFloat("REGIONAL_NORMAL_TEMP", 15); err != nil {
		return nil, errors.New("invalid REGIONAL_NORMAL_TEMP")
	}
	if cfg.LandslideSearchRadiusKm, err = parseFloat("LANDSLIDE_SEARCH_RADIUS_KM", 25); err != nil || cfg.LandslideSearchRadiusKm <= 0 {
		return nil, errors.New("invalid LANDSLIDE_SEARCH_RADIUS_KM: must be positive")
	}
	if cfg.HistoryYears, err = parseInt("HISTORY_YEARS", 10); err != nil || cfg.HistoryYears < 1 || cfg.HistoryYears > 40 {
		return nil, errors.New("invalid HISTORY_YEARS: must be 1-40")
	}
	if cfg.LookbackDays, err = parseInt("LOOKBACK_DAYS", 120); err != nil || cfg.LookbackDays < 30 || cfg.LookbackDays > 730 {
		return nil, errors.New("invalid LOOKBACK_DAYS: must be 30-730")
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}

	return cfg, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New("invalid " + key + ": must be true or false")
	}
	return b, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
