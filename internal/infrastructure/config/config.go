package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

type KafkaConfig struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
	TLS           bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	DraftTTL time.Duration
}

type NotifierConfig struct {
	TopicARN string
	Region   string
}

type AuthConfig struct {
	JWTSecret        string
	JWTPublicKeyFile string
	Issuer           string
}

type LogConfig struct {
	Level  string
	Format string
}

type TelemetryConfig struct {
	OTLPEndpoint string
}

type GRPCConfig struct {
	TLSCertFile  string
	TLSKeyFile   string
	ClientCAFile string
	Reflection   bool
}

type Config struct {
	GRPCPort       int
	GRPC           GRPCConfig
	HTTPPort       int
	DB             DatabaseConfig
	Kafka          KafkaConfig
	Redis          RedisConfig
	Notifier       NotifierConfig
	Auth           AuthConfig
	Log            LogConfig
	Telemetry      TelemetryConfig
	MigrationsPath string
	ServiceName    string
}

var defaults = map[string]any{
	"GRPC_PORT":            9087,
	"HTTP_PORT":            8087,
	"GRPC_TLS_CERT_FILE":   "",
	"GRPC_TLS_KEY_FILE":    "",
	"GRPC_CLIENT_CA_FILE":  "",
	"GRPC_REFLECTION":      false,
	"DB_HOST":              "localhost",
	"DB_PORT":              5432,
	"DB_USER":              "loan_lifecycle",
	"DB_PASSWORD":          "",
	"DB_NAME":              "loan_lifecycle",
	"DB_SSLMODE":           "require",
	"DB_MAX_CONNS":         10,
	"KAFKA_BROKERS":        "localhost:9092",
	"KAFKA_TOPIC":          "loan-lifecycle.events",
	"KAFKA_CONSUMER_GROUP": "loan-lifecycle-intake",
	"KAFKA_TLS":            false,
	"KAFKA_SASL_MECHANISM": "",
	"KAFKA_SASL_USERNAME":  "",
	"KAFKA_SASL_PASSWORD":  "",
	"REDIS_ADDR":           "localhost:6379",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"DRAFT_TTL":            "72h",
	"SNS_TOPIC_ARN":        "",
	"AWS_REGION":           "ap-south-1",
	"JWT_SECRET":           "",
	"JWT_PUBLIC_KEY_FILE":  "",
	"JWT_ISSUER":           "loan-lifecycle",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "json",
	"OTLP_ENDPOINT":        "",
	"MIGRATIONS_PATH":      "file://migrations",
	"SERVICE_NAME":         "loan-lifecycle",
}

// Load reads configuration from the environment, after loading the first
// .env file found in paths (if any).
func Load(paths ...string) (Config, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	ttl, err := time.ParseDuration(v.GetString("DRAFT_TTL"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DRAFT_TTL: %w", err)
	}

	return Config{
		GRPCPort: v.GetInt("GRPC_PORT"),
		HTTPPort: v.GetInt("HTTP_PORT"),
		GRPC: GRPCConfig{
			TLSCertFile:  v.GetString("GRPC_TLS_CERT_FILE"),
			TLSKeyFile:   v.GetString("GRPC_TLS_KEY_FILE"),
			ClientCAFile: v.GetString("GRPC_CLIENT_CA_FILE"),
			Reflection:   v.GetBool("GRPC_REFLECTION"),
		},
		DB: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(v.GetString("KAFKA_BROKERS")),
			Topic:         v.GetString("KAFKA_TOPIC"),
			ConsumerGroup: v.GetString("KAFKA_CONSUMER_GROUP"),
			TLS:           v.GetBool("KAFKA_TLS"),
			SASLMechanism: v.GetString("KAFKA_SASL_MECHANISM"),
			SASLUsername:  v.GetString("KAFKA_SASL_USERNAME"),
			SASLPassword:  v.GetString("KAFKA_SASL_PASSWORD"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			DraftTTL: ttl,
		},
		Notifier: NotifierConfig{
			TopicARN: v.GetString("SNS_TOPIC_ARN"),
			Region:   v.GetString("AWS_REGION"),
		},
		Auth: AuthConfig{
			JWTSecret:        v.GetString("JWT_SECRET"),
			JWTPublicKeyFile: v.GetString("JWT_PUBLIC_KEY_FILE"),
			Issuer:           v.GetString("JWT_ISSUER"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: v.GetString("OTLP_ENDPOINT"),
		},
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		ServiceName:    v.GetString("SERVICE_NAME"),
	}, nil
}

// Validate reports missing settings the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWTPublicKeyFile == "" {
		errs = append(errs, errors.New("JWT_SECRET or JWT_PUBLIC_KEY_FILE is required"))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if c.Redis.DraftTTL <= 0 {
		errs = append(errs, errors.New("DRAFT_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
