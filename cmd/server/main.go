package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"news-recommender/bandit"
	"news-recommender/catalog"
	"news-recommender/clicklog"
	"news-recommender/config"
	"news-recommender/scheduler"
	"news-recommender/storage"
	"news-recommender/web"
)

func main() {
	// Load configuration
	cfgPath := "./config.yaml"
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Structured JSON logging to stdout at the configured level
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	slog.Info("config loaded", "listen_addr", cfg.ListenAddr, "news_path", cfg.NewsPath, "behaviors_path", cfg.BehaviorsPath)

	// Load the article catalog
	cat, err := catalog.Load(cfg.NewsPath)
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "articles", cat.Len(), "categories", len(cat.Categories()))

	// Load the historical click log
	clicks, err := clicklog.Load(cfg.BehaviorsPath)
	if err != nil {
		slog.Error("failed to load click log", "error", err)
		os.Exit(1)
	}
	slog.Info("click log loaded", "rows", clicks.Len())

	// Open the click journal and replay clicks from earlier runs
	journal, err := storage.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open click journal", "error", err)
		os.Exit(1)
	}
	defer journal.Close()

	journaled, err := journal.Clicks()
	if err != nil {
		slog.Error("failed to read click journal", "error", err)
		os.Exit(1)
	}
	for _, click := range journaled {
		clicks.RecordClick(click.UserID, click.ArticleID)
	}
	slog.Info("click journal replayed", "clicks", len(journaled), "db_path", cfg.DBPath)

	// Build initial belief parameters
	categories := cat.Categories()
	params := bandit.Initialize(clicks.HistoryByUser(), cat.CategoryByID(), categories)
	store := bandit.NewStore(params, categories)
	slog.Info("beliefs initialized", "users", len(params))

	// Log a sample user id to try against the UI
	if users := clicks.Users(); len(users) > 0 {
		slog.Info("sample user", "user_id", users[rand.IntN(len(users))])
	} else {
		slog.Warn("no users found in click log")
	}

	srv := web.New(store, bandit.NewSampler(), cat, clicks, journal)

	// Schedule the daily batch rebuild
	sched, err := scheduler.New(cfg.Timezone, srv.Rebuild)
	if err != nil {
		slog.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}
	if err := sched.Schedule(cfg.RebuildTime); err != nil {
		slog.Error("failed to schedule rebuild", "error", err)
		os.Exit(1)
	}
	sched.Start()
	slog.Info("scheduler started", "rebuild_time", cfg.RebuildTime)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped with error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	sched.Stop()
	slog.Info("shutdown complete")
}

// logLevel maps the configured log level name to a slog.Level,
// defaulting to info.
func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
