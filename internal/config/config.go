package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Storage      StorageConfig
	Worker       WorkerConfig
	Integrations IntegrationsConfig
	Model        ModelConfig
	Monitoring   MonitoringConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig points at the S3-compatible object store holding the
// two image buckets.
type StorageConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	UseSSL         bool   `mapstructure:"use_ssl"`
	CapturesBucket string `mapstructure:"captures_bucket"`
	LabeledBucket  string `mapstructure:"labeled_bucket"`
	// PublicBaseURL is the externally reachable prefix for stored
	// objects, e.g. https://storage.example.com. Object URLs are
	// PublicBaseURL/{bucket}/{path}.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// WorkerConfig configures the polling-worker protocol. An empty
// SharedSecret disables the X-Colab-Secret check entirely.
type WorkerConfig struct {
	SharedSecret string        `mapstructure:"shared_secret"`
	TaskTTL      time.Duration `mapstructure:"task_ttl"`
}

// IntegrationsConfig holds server-held relay credentials. These are
// only used by the polling-worker endpoints; the intake and result
// endpoints take credentials per request.
type IntegrationsConfig struct {
	ThingSpeakBaseURL   string        `mapstructure:"thingspeak_base_url"`
	ThingSpeakAPIKey    string        `mapstructure:"thingspeak_api_key"`
	ThingSpeakChannelID string        `mapstructure:"thingspeak_channel_id"`
	SMSAPIKey           string        `mapstructure:"sms_api_key"`
	SMSPhone            string        `mapstructure:"sms_phone"`
	SMSService          string        `mapstructure:"sms_service"`
	TwilioAccountSID    string        `mapstructure:"twilio_account_sid"`
	TwilioPhone         string        `mapstructure:"twilio_phone"`
	HTTPTimeout         time.Duration `mapstructure:"http_timeout"`
}

// ModelConfig points the predict relay at the external inference
// endpoint.
type ModelConfig struct {
	PredictURL string        `mapstructure:"predict_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type MonitoringConfig struct {
	LogLevel           string `mapstructure:"log_level"`
	PrometheusEndpoint string `mapstructure:"prometheus_endpoint"`
	LokiEndpoint       string `mapstructure:"loki_endpoint"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("FIELDWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.postgres.port", 5432)
	viper.SetDefault("database.postgres.sslmode", "disable")

	// Redis defaults
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	// Storage defaults
	viper.SetDefault("storage.captures_bucket", "captured-images")
	viper.SetDefault("storage.labeled_bucket", "labeled-images")
	viper.SetDefault("storage.use_ssl", true)

	// Worker defaults
	viper.SetDefault("worker.task_ttl", "15m")

	// Integration defaults
	viper.SetDefault("integrations.thingspeak_base_url", "https://api.thingspeak.com")
	viper.SetDefault("integrations.http_timeout", "10s")

	// Model relay defaults
	viper.SetDefault("model.timeout", "120s")

	// Monitoring defaults
	viper.SetDefault("monitoring.log_level", "info")
	viper.SetDefault("monitoring.prometheus_endpoint", "http://localhost:9090")
	viper.SetDefault("monitoring.loki_endpoint", "http://localhost:3100")
}

func validateConfig(config *Config) error {
	if config.Database.Postgres.Host == "" {
		return fmt.Errorf("postgres host is required")
	}
	if config.Storage.Endpoint == "" {
		return fmt.Errorf("storage endpoint is required")
	}
	if config.Storage.PublicBaseURL == "" {
		return fmt.Errorf("storage public base URL is required")
	}
	if s := config.Integrations.SMSService; s != "" && s != "twilio" && s != "fast2sms" {
		return fmt.Errorf("unsupported sms service: %s", s)
	}
	return nil
}
