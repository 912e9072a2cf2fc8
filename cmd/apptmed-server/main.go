package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"apptmed/backend/internal/config"
	"apptmed/backend/internal/notify"
	"apptmed/backend/internal/scheduling"
	"apptmed/backend/internal/store"
	"apptmed/backend/internal/store/postgres"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "apptmed-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "apptmed-server"),
	)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("strategy", cfg.Strategy),
		slog.Duration("snapshot_interval", cfg.SnapshotInterval),
		slog.String("log_level", cfg.LogLevel),
	)

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := postgres.Open(connectCtx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	cancelConnect()
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	repo := postgres.NewAppointmentRepo(db)

	engine := scheduling.NewEngine(log)
	engine.SetStrategy(scheduling.StrategyByName(cfg.Strategy))

	appts, err := repo.FetchAll(context.Background())
	if err != nil {
		log.Error("initial load failed", slog.Any("err", err))
		os.Exit(1)
	}
	engine.Load(appts)

	engine.Subscribe(notify.NewStoreSyncObserver(repo, log))
	engine.Subscribe(notify.NewEmailObserver(notify.NewLogEmailSender(log), log))
	engine.Subscribe(notify.NewCalendarSyncObserver(notify.NewLogCalendarClient(log), log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			snapshot(ctx, log, engine, repo)
		case <-ctx.Done():
			log.Info("shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			snapshot(shutdownCtx, log, engine, repo)
			cancel()
			log.Info("stopped")
			return
		}
	}
}

// snapshot writes the full collection back to the store. Upsert failures are
// logged per appointment; the next snapshot retries everything.
func snapshot(ctx context.Context, log *slog.Logger, engine *scheduling.Engine, st store.AppointmentStore) {
	appts := engine.ListAll()
	failed := 0
	for _, appt := range appts {
		if _, err := st.Upsert(ctx, appt); err != nil {
			failed++
			log.Warn("snapshot upsert failed", slog.Any("err", err), slog.String("appointment_id", appt.ID.String()))
		}
	}
	log.Info("snapshot complete", slog.Int("count", len(appts)), slog.Int("failed", failed))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
