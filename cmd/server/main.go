package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/mmynk/hisaab/internal/api"
	"github.com/mmynk/hisaab/internal/auth"
	"github.com/mmynk/hisaab/internal/config"
	"github.com/mmynk/hisaab/internal/service"
	"github.com/mmynk/hisaab/internal/storage"
	"github.com/mmynk/hisaab/internal/storage/sqlite"
	"github.com/mmynk/hisaab/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.DBPath)

	users := storage.NewUsers(store)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	transactions := service.NewTransactionService(store)
	debts := service.NewDebtService(store)
	groups := service.NewGroupService(store)

	server := api.NewServer(
		service.NewAuthService(auth.NewPasswordAuthenticator(users), jwtManager, users),
		transactions,
		debts,
		groups,
		service.NewReportService(transactions, debts, groups),
		jwtManager,
	)

	slog.Info("server starting", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, server.Handler()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
