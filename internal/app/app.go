package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"example.com/loupgarou/internal/config"
	"example.com/loupgarou/internal/game"
	"example.com/loupgarou/internal/httpapi"
	"example.com/loupgarou/internal/room"
	"example.com/loupgarou/internal/token"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	rdb   *redis.Client
	rooms *room.Registry
	hub   *game.Hub

	srv *http.Server
}

type Options struct {
	Version string
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger, opts Options) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	// --- Role token store ---
	var (
		store token.Store = token.NewMemoryStore()
		rdb   *redis.Client
	)
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
		}
		store = token.NewRedisStore(rdb, cfg.Rooms.Retention)
		log.Info("role tokens in redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	}
	tokens := token.NewIssuer(store)

	// --- Rooms + transport ---
	hub := game.NewHub(log)
	rooms := room.NewRegistry(tokens, hub, room.Options{
		Retention: cfg.Rooms.Retention,
		Log:       log,
	})
	wsSrv := game.NewServer(game.Config{
		SendBuffer:     cfg.WS.SendBuffer,
		RateLimit:      rate.Limit(cfg.WS.RateLimit),
		RateBurst:      cfg.WS.RateBurst,
		PingInterval:   cfg.WS.PingInterval,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, rooms, hub, log)

	api := &httpapi.Handler{
		Rooms:   rooms,
		Tokens:  tokens,
		Version: opts.Version,
		BaseURL: cfg.HTTP.PublicBaseURL,
		Log:     log,
	}

	router := httprouter.New()
	router.PanicHandler = httpapi.PanicHandler(log)
	wsSrv.RegisterRoutes(router)
	api.RegisterRoutes(router)
	httpapi.ServeStatic(router, cfg.HTTP.StaticDir)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.SecurityHeaders(httpapi.RequestLog(log, router)),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	return &App{cfg: cfg, log: log, rdb: rdb, rooms: rooms, hub: hub, srv: srv}, nil
}

// Handler exposes the root handler, mainly for tests.
func (a *App) Handler() http.Handler { return a.srv.Handler }

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
		a.sweepLoop(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info("http server shutting down")
		// hijacked websocket conns are not tracked by Shutdown
		a.hub.CloseAll()
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	err := g.Wait()
	_ = a.Close(context.Background())
	return err
}

// sweepLoop deletes expired rooms until ctx is done.
func (a *App) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Rooms.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := a.rooms.Sweep(ctx, now); n > 0 {
				a.log.Info("expired rooms swept", "count", n, "active", a.rooms.Count())
			}
		}
	}
}

func (a *App) Close(ctx context.Context) error {
	if a.rdb != nil {
		return a.rdb.Close()
	}
	return nil
}
