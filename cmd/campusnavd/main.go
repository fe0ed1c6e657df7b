package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"campusnav/internal/api"
	"campusnav/pkg/config"
	"campusnav/pkg/db"
	"campusnav/pkg/floor"
	"campusnav/pkg/floorplan"
	"campusnav/pkg/logging"
	"campusnav/pkg/nav"
	"campusnav/pkg/router"
	"campusnav/pkg/stairs"
	"campusnav/pkg/store"
	"campusnav/pkg/tracker"
	"campusnav/pkg/version"
)

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", "configs/campusnav.yaml", "Path to the config file")
)

func main() {
	flag.Parse()

	// Optional .env for local overrides; absence is not an error.
	_ = godotenv.Load()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("CampusNav started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	provider := config.NewProvider(appCfg, st)

	campus, err := floorplan.LoadDir(appCfg.Floorplan.Dir, slog.With("component", "floorplan"))
	if err != nil {
		return fmt.Errorf("failed to load floor plans: %w", err)
	}

	r := router.NewRouter(appCfg.Router, slog.With("component", "router"))
	r.SupplyFloorData(campus.Buildings, campus.Stairs, campus.Entrances)

	session := nav.NewSession(nav.Deps{
		Provider: provider,
		Store:    st,
		Tracker:  tracker.New(provider.Stride(ctx), slog.With("component", "tracker")),
		Floors:   floor.NewDetector(campus.Buildings, slog.With("component", "floor")),
		Stairs:   stairs.New(appCfg.Stairs, campus.Stairs, slog.With("component", "stairs")),
		Router:   r,
		Logger:   slog.With("component", "session"),
	})
	defer session.Stop()

	return runServer(ctx, appCfg, session, r, provider, st)
}

func initDB(appCfg *config.Config) (*db.DB, store.StateStore, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

func runServer(ctx context.Context, cfg *config.Config, session *nav.Session, r *router.Router, provider config.Provider, st store.StateStore) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address,
		api.NewSessionHandler(session),
		api.NewRouteHandler(session, r),
		api.NewConfigHandler(provider, st),
		api.NewStreamHandler(session),
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
