package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"bilancio/internal/backend"
	"bilancio/internal/config"
	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

// bilancio-init bootstraps a deployment: user, account, default category
// and the first budget period. Safe to run more than once.
func main() {
	_ = godotenv.Load()

	logger := applog.Default()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

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
	setup := services.NewSetupService(repo, periods)

	var anchor core.Date
	if cfg.AnchorDate != "" {
		anchor, err = core.ParseDate(cfg.AnchorDate)
		if err != nil {
			logger.Error("Invalid anchor date", "error", err, "value", cfg.AnchorDate)
			os.Exit(1)
		}
	}
	balance, err := core.ParseMoney(cfg.StartingBalance)
	if err != nil {
		logger.Error("Invalid starting balance", "error", err, "value", cfg.StartingBalance)
		os.Exit(1)
	}

	res, err := setup.Bootstrap(ctx, services.SetupParams{
		BankName:        cfg.BankName,
		AccountName:     cfg.AccountName,
		Currency:        cfg.Currency,
		PeriodType:      core.PeriodType(cfg.PeriodType),
		AnchorDate:      anchor,
		StartingBalance: balance,
		DefaultCategory: cfg.DefaultCategory,
	})
	if err != nil {
		logger.Error("Bootstrap failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Deployment bootstrapped",
		"user_id", res.User.ID,
		"account_id", res.Account.ID,
		"default_category_id", res.Default.ID,
		"period_id", res.PeriodID,
		"backend", cfg.DocBackend)
}
