package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bilancio/internal/backend"
	"bilancio/internal/config"
	"bilancio/internal/core"
	"bilancio/internal/docstore"
	apphttp "bilancio/internal/http"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

func main() {
	// .env for local development; absent in containers.
	_ = godotenv.Load()

	logger := applog.Default()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateStore(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize document store", "error", err, "backend", cfg.DocBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	repo := storage.NewRepository(result.Store)
	periods := services.NewPeriodService(repo)
	categories := services.NewCategoryService(repo)
	ingest := services.NewIngestService(repo, periods, categories)
	setup := services.NewSetupService(repo, periods)

	params, err := setupParams(cfg)
	if err != nil {
		logger.Error("Invalid setup parameters", "error", err)
		os.Exit(1)
	}
	bootstrapped, err := setup.Bootstrap(ctx, params)
	if err != nil {
		logger.Error("Bootstrap failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Deployment ready",
		"user_id", bootstrapped.User.ID,
		"account_id", bootstrapped.Account.ID,
		"period_id", bootstrapped.PeriodID)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Periods:    periods,
		Categories: categories,
		Ingest:     ingest,
		UserID:     bootstrapped.User.ID,
		AccountID:  bootstrapped.Account.ID,
		Ready: func(ctx context.Context) error {
			_, err := result.Store.List(ctx, docstore.AccountsPrefix)
			return err
		},
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting bilancio server", "port", cfg.Port, "backend", cfg.DocBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

func setupParams(cfg *config.Config) (services.SetupParams, error) {
	var anchor core.Date
	if cfg.AnchorDate != "" {
		var err error
		anchor, err = core.ParseDate(cfg.AnchorDate)
		if err != nil {
			return services.SetupParams{}, err
		}
	}
	balance, err := core.ParseMoney(cfg.StartingBalance)
	if err != nil {
		return services.SetupParams{}, err
	}
	return services.SetupParams{
		BankName:        cfg.BankName,
		AccountName:     cfg.AccountName,
		Currency:        cfg.Currency,
		PeriodType:      core.PeriodType(cfg.PeriodType),
		AnchorDate:      anchor,
		StartingBalance: balance,
		DefaultCategory: cfg.DefaultCategory,
	}, nil
}
