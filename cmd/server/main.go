package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/hdnotes/notes-api/internal/config"
	"github.com/hdnotes/notes-api/internal/handler"
	"github.com/hdnotes/notes-api/internal/repository"
	"github.com/hdnotes/notes-api/internal/usecase"
	"github.com/hdnotes/notes-api/shared/auth"
	"github.com/hdnotes/notes-api/shared/mailer"
	"github.com/hdnotes/notes-api/shared/provider"
	"github.com/hdnotes/notes-api/shared/validator"
)

const (
	tokenIssuer     = "notes-api"
	shutdownTimeout = 10 * time.Second
)

func main() {
	logger := newLogger()
	cfg := config.New(&logger)

	if cfg.IsDevelopment() {
		logger = logger.Level(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	logger.Info().Msg("connected to MongoDB")

	db := client.Database(cfg.MongoDatabase)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	noteRepo := repository.NewNoteMongoRepository(db)

	jwtAuth := auth.NewJWTAuthenticator(cfg.JWTSecret, tokenIssuer, tokenIssuer)
	mail := mailer.NewMailer(&logger)
	google := provider.NewGoogleOAuthProvider(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.APIBaseURL+"/api/auth/google/callback",
	)

	validate, err := validator.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize validator")
	}

	authUsecase := usecase.NewAuthUsecase(userRepo, jwtAuth, mail, &logger, cfg.IsDevelopment())
	noteUsecase := usecase.NewNoteUsecase(noteRepo)

	cookies := handler.NewCookieWriter(cfg.IsProduction())
	guard := handler.NewAccessGuard(jwtAuth, userRepo, cookies)
	authHandler := handler.NewAuthHandler(authUsecase, google, validate, cookies, cfg.FrontendURL, &logger)
	noteHandler := handler.NewNoteHandler(noteUsecase, validate, &logger)

	router := handler.NewRouter(authHandler, noteHandler, guard, cfg.FrontendURL, &logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.Port).
			Str("environment", cfg.Environment).
			Str("frontend_url", cfg.FrontendURL).
			Msg("server starting")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newLogger() zerolog.Logger {
	if os.Getenv("ENVIRONMENT") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
