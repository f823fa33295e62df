package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestNewAuthServiceConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := NewAuthServiceConfig()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Token.AccessTokenExpiresIn)
	assert.Equal(t, 7*24*time.Hour, cfg.Token.RefreshTokenExpiresIn)
	assert.Equal(t, 5, cfg.Security.LockoutThreshold)
	assert.Equal(t, 15*time.Minute, cfg.Security.LockoutDuration)
	assert.Equal(t, 5*time.Minute, cfg.Security.MFAOTPExpiresIn)
	assert.Equal(t, 15*time.Minute, cfg.Security.ResetOTPExpiresIn)
	assert.Equal(t, 8, cfg.Security.MinPasswordLength)
	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.Equal(t, "bcrypt", cfg.Security.PasswordHashAlgorithm)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoggerConfig_UsesServiceName(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTH_SERVICE_NAME", "auth-eu")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := NewAuthServiceConfig()
	require.NoError(t, err)

	assert.Empty(t, cfg.Log.Service)

	logCfg := cfg.LoggerConfig()
	assert.Equal(t, "auth-eu", logCfg.Service)
	assert.Equal(t, "debug", logCfg.Level)
}

func TestNewAuthServiceConfig_MissingSecrets(t *testing.T) {
	_, err := NewAuthServiceConfig()
	assert.Error(t, err)
}

func TestNewAuthServiceConfig_SecretsMustDiffer(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "same")
	t.Setenv("JWT_REFRESH_SECRET", "same")

	_, err := NewAuthServiceConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestNewAuthServiceConfig_PostgresRequiresDSN(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "postgres")

	_, err := NewAuthServiceConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")
}

func TestNewAuthServiceConfig_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("LOCKOUT_THRESHOLD", "3")
	t.Setenv("PASSWORD_HASH_ALGORITHM", "argon2id")
	t.Setenv("COOKIE_SAME_SITE", "strict")

	cfg, err := NewAuthServiceConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 3, cfg.Security.LockoutThreshold)
	mode, err := cfg.Cookie.SameSiteMode()
	require.NoError(t, err)
	assert.Equal(t, http.SameSiteStrictMode, mode)
}

func TestValidate_RejectsUnknownValues(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "cassandra")
	t.Setenv("PASSWORD_HASH_ALGORITHM", "md5")
	t.Setenv("COOKIE_SAME_SITE", "sometimes")

	_, err := NewAuthServiceConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "PASSWORD_HASH_ALGORITHM")
	assert.Contains(t, err.Error(), "COOKIE_SAME_SITE")
}
