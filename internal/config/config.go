package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
// It is constructed once in Load and passed by reference; core logic never
// reads ambient process state.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Warehouse (destination store and primary bulk dataset).
	WarehouseDSN     string
	WarehouseTimeout time.Duration
	GSODTable        string
	ObservationTable string
	StationID        string

	// Location queried against both sources. Defaults to Chicago O'Hare,
	// matching the GSOD station.
	LocationLat float64
	LocationLon float64

	// Fallback weather API configuration. The key is optional: without it the
	// fallback source is simply unavailable, which only surfaces as an error
	// when a date actually needs it.
	WeatherAPIKey     string
	WeatherAPITimeout time.Duration

	// Optional Kafka publisher for inserted observations.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from the environment (and a .env file when
// present), applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	warehouseTimeout, err := parsePositiveDuration("WAREHOUSE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	apiTimeout, err := parsePositiveDuration("WEATHER_API_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	lat, err := parseFloat("LOCATION_LAT", 41.8781)
	if err != nil {
		return nil, err
	}
	lon, err := parseFloat("LOCATION_LON", -87.6298)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WarehouseDSN:     os.Getenv("WAREHOUSE_DSN"),
		WarehouseTimeout: warehouseTimeout,
		GSODTable:        sharedcfg.EnvOrDefault("GSOD_TABLE", "noaa_gsod"),
		ObservationTable: sharedcfg.EnvOrDefault("OBSERVATION_TABLE", "weather_observations"),
		StationID:        sharedcfg.EnvOrDefault("STATION_ID", "94846"),

		LocationLat: lat,
		LocationLon: lon,

		WeatherAPIKey:     os.Getenv("WEATHER_API_KEY"),
		WeatherAPITimeout: apiTimeout,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weather-observations"),
	}

	if cfg.WarehouseDSN == "" {
		return nil, errors.New("WAREHOUSE_DSN is required")
	}
	if cfg.GSODTable == "" {
		return nil, errors.New("GSOD_TABLE must not be empty")
	}
	if cfg.ObservationTable == "" {
		return nil, errors.New("OBSERVATION_TABLE must not be empty")
	}
	if cfg.StationID == "" {
		return nil, errors.New("STATION_ID must not be empty")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

// FallbackEnabled reports whether the external weather API can be used.
func (c *Config) FallbackEnabled() bool {
	return c.WeatherAPIKey != ""
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return v, nil
}
