package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction. Service is left to the caller, which
// knows its own name.
type Config struct {
	Level   string `env:"LOG_LEVEL"  envDefault:"info"`
	Pretty  bool   `env:"LOG_PRETTY" envDefault:"false"`
	Service string
}

// New builds a zerolog.Logger writing to stdout.
func New(cfg Config) *zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter builds a zerolog.Logger writing to w. An unknown level falls
// back to info.
func NewWithWriter(cfg Config, w io.Writer) *zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}

	logger := ctx.Logger()
	return &logger
}

// Nop returns a logger that discards everything.
func Nop() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
