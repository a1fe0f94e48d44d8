package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/padel-club/internal/config"
	"github.com/AdamBeresnev/padel-club/internal/db"
	"github.com/AdamBeresnev/padel-club/internal/live"
	"github.com/AdamBeresnev/padel-club/internal/metrics"
	"github.com/AdamBeresnev/padel-club/internal/middleware"
	"github.com/AdamBeresnev/padel-club/internal/service"
	"github.com/AdamBeresnev/padel-club/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type application struct {
	cfg            config.Config
	sessionManager *scs.SessionManager

	users       *service.UserService
	tournaments *service.TournamentService
	brackets    *service.BracketService
	matches     *service.MatchService
	conflicts   *service.ConflictService

	userStore *store.UserStore
	live      *live.Handler
	metrics   http.Handler
}

func newApplication(cfg config.Config, database *sqlx.DB, sessionManager *scs.SessionManager, hub *live.Hub, registry *prometheus.Registry) (*application, error) {
	drawDefaults, err := cfg.DrawOptions()
	if err != nil {
		return nil, err
	}

	tournamentStore := store.NewTournamentStore(database)
	matchStore := store.NewMatchStore(database)
	userStore := store.NewUserStore(database)

	opts := []service.Option{
		service.WithMetrics(metrics.NewService(registry)),
		service.WithBroadcaster(hub),
		service.WithDrawDefaults(drawDefaults),
	}

	return &application{
		cfg:            cfg,
		sessionManager: sessionManager,
		users:          service.NewUserService(database, userStore),
		tournaments:    service.NewTournamentService(database, tournamentStore, matchStore, opts...),
		brackets:       service.NewBracketService(database, tournamentStore, matchStore, opts...),
		matches:        service.NewMatchService(database, tournamentStore, matchStore, opts...),
		conflicts:      service.NewConflictService(database, tournamentStore, matchStore, opts...),
		userStore:      userStore,
		live:           live.NewHandler(hub, cfg.AllowedOrigins),
		metrics:        metrics.NewMetricsHandler(registry),
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.MigrationsDir); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	middleware.InitAuth(cfg)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := live.NewHub()
	go hub.Run(ctx)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app, err := newApplication(cfg, database, sessionManager, hub, registry)
	if err != nil {
		log.Fatal("Failed to build application:", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", "http://localhost:"+cfg.Port)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}
}
