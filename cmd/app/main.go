package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"copystudio/internal/billing"
	"copystudio/internal/http/handlers"
	"copystudio/internal/http/httpapi"
	"copystudio/internal/identity"
	"copystudio/internal/infra"
	"copystudio/internal/providers/gen"
	"copystudio/internal/session"
	"copystudio/internal/workspace"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	idClient, err := identity.NewClient(identity.Options{
		BaseURL:   cfg.IdentityBaseURL,
		APIKey:    cfg.IdentityAPIKey,
		TokenPath: cfg.SessionTokenPath,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build identity client")
	}

	store := session.NewStore(idClient, logger)
	store.Bootstrap(context.Background())
	defer store.Close()

	generator, err := gen.NewGeminiClient(gen.GeminiOptions{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation client")
	}
	ws := workspace.New(generator, store, logger)

	var payments handlers.PaymentGateway
	if cfg.WorkflowBaseURL != "" {
		client, err := billing.NewClient(billing.Options{
			BaseURL: cfg.WorkflowBaseURL,
			Tokens:  idClient,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build billing client")
		}
		payments = client
	} else {
		logger.Warn().Msg("WORKFLOW_BASE_URL not set, billing actions disabled")
		payments = handlers.DisabledPayments{}
	}

	app := handlers.NewApp(logger, store, idClient, ws, payments)
	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("app listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
