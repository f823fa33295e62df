package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/config"
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/handler"
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/token"
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/credential-auth/shared/auth"
	"github.com/vasapolrittideah/credential-auth/shared/discovery"
	"github.com/vasapolrittideah/credential-auth/shared/logger"
	"github.com/vasapolrittideah/credential-auth/shared/mailer"
	"github.com/vasapolrittideah/credential-auth/shared/security"
	"github.com/vasapolrittideah/credential-auth/shared/utilities"
	"github.com/vasapolrittideah/credential-auth/shared/validator"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewAuthServiceConfig()
	if err != nil {
		bootLogger := logger.New(logger.Config{Level: "info", Service: "auth-service"})
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.LoggerConfig())

	userRepo, closeRepo := newUserRepository(ctx, cfg, log)
	defer closeRepo()

	hasher, err := security.NewPasswordHasher(cfg.Security.PasswordHashAlgorithm, cfg.Security.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create password hasher")
	}

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)
	issuer := token.NewIssuer(jwtAuth, cfg.Token)
	m := mailer.NewMailer(log)

	authUsecase := usecase.NewAuthUsecase(userRepo, hasher, issuer, m, cfg.Security, log)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(userRepo, hasher, m, cfg.Security, log)

	v, err := validator.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create validator")
	}

	authHandler, err := handler.NewAuthHTTPHandler(authUsecase, passwordResetUsecase, v, cfg.Token, cfg.Cookie, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create http handler")
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      authHandler.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	grpcServer := grpc.NewServer()
	healthServer := utilities.RegisterHealthServer(grpcServer, cfg.Name)

	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("failed to listen")
	}

	deregister := registerWithConsul(cfg, log)
	defer deregister()

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()
	go func() {
		defer wg.Done()
		log.Info().Str("addr", cfg.GRPCAddr).Msg("grpc health server listening")
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error().Err(err).Msg("grpc server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down http server")
	}
	grpcServer.GracefulStop()

	wg.Wait()
}

// newUserRepository connects the configured backend. The returned func
// releases its connection.
func newUserRepository(
	ctx context.Context,
	cfg *config.AuthServiceConfig,
	log *zerolog.Logger,
) (repository.UserRepository, func()) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := repository.OpenPostgres(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}

		if err := repository.RunMigrations(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}

		return repository.NewUserPostgresRepository(db), func() { _ = db.Close() }

	case config.DriverMemory:
		log.Warn().Msg("using in-memory user store; data is lost on restart")
		return repository.NewUserMemoryRepository(), func() {}

	default:
		client, err := repository.ConnectMongo(ctx, cfg.Database.MongoURI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongodb")
		}

		db := client.Database(cfg.Database.MongoDatabase)
		return repository.NewUserMongoRepository(ctx, log, db), func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to disconnect mongodb")
			}
		}
	}
}

// registerWithConsul announces the gRPC health endpoint when enabled and
// returns the matching deregistration.
func registerWithConsul(cfg *config.AuthServiceConfig, log *zerolog.Logger) func() {
	if !cfg.Consul.Enabled {
		return func() {}
	}

	host, port, err := discovery.ParseHostPort(cfg.GRPCAddr, cfg.AdvertiseHost)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("invalid grpc address")
	}

	registry, err := discovery.NewConsulRegistry(cfg.Consul.Address)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create consul registry")
	}

	reg := discovery.Registration{Name: cfg.Name, Host: host, Port: port, Tags: []string{"auth", "http"}}
	if err := registry.Register(reg); err != nil {
		log.Error().Err(err).Msg("failed to register with consul")
		return func() {}
	}

	log.Info().Str("consul", cfg.Consul.Address).Msg("registered with consul")

	return func() {
		id := discovery.DefaultID(reg)
		if err := registry.Deregister(id); err != nil {
			log.Error().Err(err).Msg("failed to deregister from consul")
		}
	}
}
