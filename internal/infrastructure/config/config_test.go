package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9087, cfg.GRPCPort)
	assert.Equal(t, 8087, cfg.HTTPPort)
	assert.Equal(t, "loan_lifecycle", cfg.DB.Name)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 72*time.Hour, cfg.Redis.DraftTTL)
	assert.Equal(t, ":9087", cfg.GRPCAddr())
	assert.Equal(t, ":8087", cfg.HTTPAddr())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("GRPC_PORT", "9999")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("DRAFT_TTL", "30m")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.GRPCPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Minute, cfg.Redis.DraftTTL)
	assert.Equal(t, "secret", cfg.DB.Password)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg, err := Load(filepath.Join(dir, "missing.env"), path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidTTL(t *testing.T) {
	t.Setenv("DRAFT_TTL", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "DRAFT_TTL")
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.DB.Password = "pw"
	cfg.Auth.JWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_GRPCTransport(t *testing.T) {
	t.Setenv("GRPC_TLS_CERT_FILE", "/etc/tls/server.pem")
	t.Setenv("GRPC_TLS_KEY_FILE", "/etc/tls/server-key.pem")
	t.Setenv("GRPC_REFLECTION", "true")
	t.Setenv("GRPC_CLIENT_CA_FILE", "/etc/tls/ca.pem")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/etc/tls/server.pem", cfg.GRPC.TLSCertFile)
	assert.Equal(t, "/etc/tls/server-key.pem", cfg.GRPC.TLSKeyFile)
	assert.True(t, cfg.GRPC.Reflection)
	assert.Equal(t, "/etc/tls/ca.pem", cfg.GRPC.ClientCAFile)
}

func TestLoad_KafkaSecurity(t *testing.T) {
	t.Setenv("KAFKA_TLS", "true")
	t.Setenv("KAFKA_SASL_MECHANISM", "SCRAM-SHA-512")
	t.Setenv("KAFKA_SASL_USERNAME", "lifecycle")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Kafka.TLS)
	assert.Equal(t, "SCRAM-SHA-512", cfg.Kafka.SASLMechanism)
	assert.Equal(t, "lifecycle", cfg.Kafka.SASLUsername)
	assert.Equal(t, "loan-lifecycle-intake", cfg.Kafka.ConsumerGroup)
}

func TestValidate_PublicKeyFileSatisfiesAuth(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.DB.Password = "pw"
	cfg.Auth.JWTPublicKeyFile = "/etc/jwt/public.pem"
	assert.NoError(t, cfg.Validate())
}
