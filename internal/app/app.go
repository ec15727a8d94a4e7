package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"example.com/mastermind/internal/auth"
	"example.com/mastermind/internal/config"
	"example.com/mastermind/internal/httpapi"
	"example.com/mastermind/internal/metrics"
	"example.com/mastermind/internal/migrate"
	"example.com/mastermind/internal/scoring"
	"example.com/mastermind/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const pingTimeout = 10 * time.Second

type App struct {
	cfg config.Config
	log *slog.Logger

	db  *pgxpool.Pool // nil unless POSTGRES_ENABLED
	rdb *redis.Client // nil unless REDIS_ENABLED

	srv *http.Server
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{cfg: cfg, log: log}

	m := metrics.New()
	layers := []scoring.Layer{
		{Name: "memory", Cache: scoring.NewInMemoryScoreCache(scoring.DefaultMemoryEntries)},
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	// --- Redis ---
	if cfg.Redis.Enabled {
		a.rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err := a.rdb.Ping(pingCtx).Err(); err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
		}
		layers = append(layers, scoring.Layer{Name: "redis", Cache: scoring.NewRedisScoreCache(a.rdb, cfg.Redis.CacheTTL)})
	}

	// --- Postgres ---
	if cfg.Postgres.Enabled {
		if cfg.Postgres.RunMigrations {
			if err := migrate.Up(ctx, cfg.Postgres.URL, cfg.Postgres.MigrationsDir, log); err != nil {
				_ = a.Close(ctx)
				return nil, err
			}
		}
		dbpool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("pgxpool: %w", err)
		}
		a.db = dbpool
		if err := dbpool.Ping(pingCtx); err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		layers = append(layers, scoring.Layer{Name: "postgres", Cache: store.NewScoreStore(dbpool)})
	}

	// --- Auth ---
	authSvc := auth.NewService([]byte(cfg.Auth.Secret))
	tokenH := &httpapi.TokenHandler{
		Clients:  auth.Clients(cfg.Auth.Clients),
		Auth:     authSvc,
		TokenTTL: cfg.Auth.TokenTTL,
		Log:      log,
	}

	var (
		verifier auth.Verifier
		protect  func(http.Handler) http.Handler
	)
	if cfg.Auth.Required {
		verifier = authSvc
		protect = httpapi.AuthMiddleware(authSvc)
	}

	// --- Scoring ---
	scoreSvc := scoring.NewService(log, m, layers...)
	scoreSrv := scoring.NewServer(scoreSvc, verifier, m, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpapi.Healthz)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/api/token", tokenH.Issue)
	scoreSrv.RegisterRoutes(mux, protect)

	a.srv = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.RequestID(httpapi.AccessLog(log)(m.Middleware(mux))),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	log.Info("score cache layers ready", "layers", layerNames(layers), "auth_required", cfg.Auth.Required)
	return a, nil
}

// Handler exposes the routed handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.srv.Handler
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr)

	g.Go(func() error {
		err := a.srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info("http server shutting down")
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	err := g.Wait()
	_ = a.Close(context.Background())
	return err
}

func (a *App) Close(ctx context.Context) error {
	// best-effort
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
		a.rdb = nil
	}
	return nil
}

func layerNames(layers []scoring.Layer) []string {
	names := make([]string, len(layers))
	for i, l := range layers {
		names[i] = l.Name
	}
	return names
}
