package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/memehub/meme-api/internal/cache"
	"github.com/memehub/meme-api/internal/cache/redisstore"
	"github.com/memehub/meme-api/internal/config"
	"github.com/memehub/meme-api/internal/meme"
	"github.com/memehub/meme-api/internal/server"
	"github.com/memehub/meme-api/internal/transport"
)

// App wires configuration, dependencies, and the HTTP server together.
type App struct {
	cfg       config.Config
	logger    *slog.Logger
	stopCache func() error
	httpSrv   *http.Server
}

// New creates a fully initialised application.
func New(cfg config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	store, stopCache, err := newCacheStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	httpClient := transport.NewHTTPClient(cfg)

	primary, err := meme.NewRedditSource(httpClient, logger, cfg.PrimaryBaseURL, cfg.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("setup primary source: %w", err)
	}

	fallback, err := meme.NewFallbackSource(httpClient, logger, cfg.FallbackBaseURL, cfg.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("setup fallback source: %w", err)
	}

	service := meme.NewService(logger, store, cfg.CacheTTL, primary, fallback)
	handler := server.NewHandler(cfg, logger, service)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           instrumentHandler(handler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout + cfg.TransportTimeout,
		WriteTimeout:      cfg.TransportTimeout + cfg.RequestTimeout,
		IdleTimeout:       cfg.IdleConnTimeout,
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		stopCache: stopCache,
		httpSrv:   httpSrv,
	}, nil
}

func newCacheStore(cfg config.Config) (cache.Store, func() error, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		store, err := redisstore.New(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.CacheBackendNone:
		return cache.Noop{}, nil, nil
	default:
		return cache.NewMemory(), nil, nil
	}
}

// Run blocks until the server shuts down or the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	defer func() {
		if a.stopCache != nil {
			if err := a.stopCache(); err != nil {
				a.logger.Warn("cache close failed", slog.String("error", err.Error()))
			}
		}
	}()

	go func() {
		a.logger.Info("meme api starting",
			slog.String("addr", a.cfg.ListenAddr),
			slog.String("cache_backend", string(a.cfg.CacheBackend)))
		err := a.httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func instrumentHandler(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		dur := time.Since(start)
		logger.Debug("handled request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("duration", dur))
	})
}
