package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vasapolrittideah/credential-auth/shared/logger"
	"github.com/vasapolrittideah/credential-auth/shared/security"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// AuthServiceConfig holds every setting the auth service reads from the
// environment.
type AuthServiceConfig struct {
	Name            string        `env:"AUTH_SERVICE_NAME"      envDefault:"auth-service"`
	HTTPAddr        string        `env:"AUTH_HTTP_ADDR"         envDefault:":5000"`
	GRPCAddr        string        `env:"AUTH_GRPC_ADDR"         envDefault:":50051"`
	AdvertiseHost   string        `env:"AUTH_ADVERTISE_HOST"    envDefault:"localhost"`
	ReadTimeout     time.Duration `env:"AUTH_HTTP_READ_TIMEOUT"  envDefault:"10s"`
	WriteTimeout    time.Duration `env:"AUTH_HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"AUTH_SHUTDOWN_TIMEOUT"  envDefault:"15s"`

	Log      logger.Config
	Database DatabaseConfig
	Token    TokenConfig
	Security SecurityConfig
	Cookie   CookieConfig
	Consul   ConsulConfig
}

// DatabaseConfig selects and configures the user directory backend.
type DatabaseConfig struct {
	Driver        string `env:"DB_DRIVER"      envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"auth"`
	PostgresDSN   string `env:"POSTGRES_DSN"`
}

// TokenConfig configures access and refresh token signing.
type TokenConfig struct {
	AccessTokenSecret     string        `env:"JWT_ACCESS_SECRET,required"`
	RefreshTokenSecret    string        `env:"JWT_REFRESH_SECRET,required"`
	AccessTokenExpiresIn  time.Duration `env:"JWT_ACCESS_EXPIRES_IN"  envDefault:"15m"`
	RefreshTokenExpiresIn time.Duration `env:"JWT_REFRESH_EXPIRES_IN" envDefault:"168h"`
	Issuer                string        `env:"JWT_ISSUER"             envDefault:"auth-service"`
}

// SecurityConfig holds lockout, challenge and hashing parameters.
type SecurityConfig struct {
	LockoutThreshold      int           `env:"LOCKOUT_THRESHOLD"       envDefault:"5"`
	LockoutDuration       time.Duration `env:"LOCKOUT_DURATION"        envDefault:"15m"`
	MFAOTPExpiresIn       time.Duration `env:"MFA_OTP_EXPIRES_IN"      envDefault:"5m"`
	ResetOTPExpiresIn     time.Duration `env:"RESET_OTP_EXPIRES_IN"    envDefault:"15m"`
	OTPMaxAttempts        int           `env:"OTP_MAX_ATTEMPTS"        envDefault:"5"`
	MinPasswordLength     int           `env:"MIN_PASSWORD_LENGTH"     envDefault:"8"`
	PasswordHashAlgorithm string        `env:"PASSWORD_HASH_ALGORITHM" envDefault:"bcrypt"`
	BcryptCost            int           `env:"BCRYPT_COST"             envDefault:"10"`
}

// CookieConfig controls the credential carrier cookies.
type CookieConfig struct {
	Secure   bool   `env:"COOKIE_SECURE"    envDefault:"false"`
	Domain   string `env:"COOKIE_DOMAIN"`
	SameSite string `env:"COOKIE_SAME_SITE" envDefault:"lax"`
}

// ConsulConfig controls service registration.
type ConsulConfig struct {
	Enabled bool   `env:"CONSUL_ENABLED" envDefault:"false"`
	Address string `env:"CONSUL_ADDR"    envDefault:"localhost:8500"`
}

// NewAuthServiceConfig parses and validates the configuration from the
// environment.
func NewAuthServiceConfig() (*AuthServiceConfig, error) {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoggerConfig returns the log settings tagged with the service name.
func (c *AuthServiceConfig) LoggerConfig() logger.Config {
	cfg := c.Log
	cfg.Service = c.Name
	return cfg
}

// Validate checks cross-field constraints the env tags cannot express.
func (c *AuthServiceConfig) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo driver"))
		}
	case DriverPostgres:
		if c.Database.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	if c.Token.AccessTokenSecret == "" || c.Token.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required"))
	} else if c.Token.AccessTokenSecret == c.Token.RefreshTokenSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.Token.AccessTokenExpiresIn <= 0 || c.Token.RefreshTokenExpiresIn <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}

	if c.Security.LockoutThreshold <= 0 {
		errs = append(errs, errors.New("LOCKOUT_THRESHOLD must be positive"))
	}
	if c.Security.LockoutDuration <= 0 || c.Security.MFAOTPExpiresIn <= 0 || c.Security.ResetOTPExpiresIn <= 0 {
		errs = append(errs, errors.New("lockout and OTP lifetimes must be positive"))
	}
	if c.Security.OTPMaxAttempts <= 0 {
		errs = append(errs, errors.New("OTP_MAX_ATTEMPTS must be positive"))
	}
	if c.Security.MinPasswordLength <= 0 || c.Security.MinPasswordLength > security.MaxPasswordBytes {
		errs = append(errs, fmt.Errorf("MIN_PASSWORD_LENGTH must be between 1 and %d", security.MaxPasswordBytes))
	}

	switch strings.ToLower(c.Security.PasswordHashAlgorithm) {
	case security.AlgorithmBcrypt, security.AlgorithmArgon2ID:
	default:
		errs = append(errs, fmt.Errorf("unsupported PASSWORD_HASH_ALGORITHM %q", c.Security.PasswordHashAlgorithm))
	}

	if _, err := c.Cookie.SameSiteMode(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SameSiteMode converts the configured SameSite name to its http constant.
func (c CookieConfig) SameSiteMode() (http.SameSite, error) {
	switch strings.ToLower(c.SameSite) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("unsupported COOKIE_SAME_SITE %q", c.SameSite)
	}
}
