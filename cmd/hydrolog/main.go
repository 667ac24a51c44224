package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	adapthttp "hydrolog/internal/adapter/http"
	"hydrolog/internal/adapter/memory"
	"hydrolog/internal/adapter/postgres"
	"hydrolog/internal/app"
	"hydrolog/internal/config"
	"hydrolog/internal/domain"
	"hydrolog/internal/logger"
	"hydrolog/internal/scheduler"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("invalid TIMEZONE", zap.String("tz", cfg.Timezone), zap.Error(err))
	}

	var store domain.IntakeStore
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db open", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		store = db
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")
		store = memory.New()
	}

	agg := app.NewAggregator(loc, log)
	srv := adapthttp.New(store, agg, cfg.DailyGoalML, cfg.MaxAmountML, log)

	rollover := scheduler.New(cfg.RolloverCheckInterval, loc, srv.PublishAll, log)
	if err := rollover.Start(); err != nil {
		log.Fatal("rollover checker", zap.Error(err))
	}
	defer rollover.Stop()

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, srv.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server", zap.Error(err))
	}
}
