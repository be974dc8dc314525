package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/adapters/backend"
	server "hotelapp_web/internal/adapters/http_server"
	"hotelapp_web/internal/adapters/observability"
	"hotelapp_web/internal/adapters/razorpay"
	redisad "hotelapp_web/internal/adapters/redis"
	"hotelapp_web/internal/app"
	"hotelapp_web/internal/domain"
	"hotelapp_web/internal/imaging"
	"hotelapp_web/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// redis: tokens per browsing context and the hotel details cache
	rc := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Pass, DB: cfg.Redis.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := rc.Ping(pingCtx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis ping failed")
	}
	cancel()
	log.Info().Msg("redis connection ok")

	sessions := redisad.NewSessions(rc, cfg.Redis.Prefix, cfg.Redis.SessionTTL)
	cache := redisad.NewFromClient(rc, cfg.Redis.Prefix)
	host, _ := os.Hostname()

	scripts := razorpay.NewScriptLoader(cfg.Checkout.ScriptURL, nil)
	widget := razorpay.NewDeferredWidget()

	ws := app.NewWorkspaces(app.WorkspaceConfig{
		Store: func(id string) domain.TokenStore { return sessions.For(id, host) },
		Clients: func(tokens app.TokenSource) app.APIs {
			cl, err := backend.New(cfg.Backend.BaseURL, tokens, backend.Options{
				RPS: cfg.Backend.RPS, Timeout: cfg.Backend.Timeout, Retries: 2,
			})
			if err != nil {
				log.Fatal().Err(err).Msg("backend client")
			}
			return cl.APIs()
		},
		DetailsCache: cache,
		DetailsTTL:   cfg.CacheTTL,
		Scripts:      scripts,
		Widget:       widget,
		Fees:         app.Fees{ServiceFee: cfg.Checkout.ServiceFee, Taxes: cfg.Checkout.Taxes},
		IdleTTL:      cfg.WorkspaceIdleTTL,
	})
	go ws.Run(ctx, cfg.SweepEvery)

	// http
	srv := server.New(cfg.Backend.Timeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Workspaces: ws, Scripts: scripts, Widget: widget,
		SecureCookie: cfg.AppEnv != "dev" && cfg.AppEnv != "development",
		Images:       imaging.DefaultPresets.Limit(cfg.Images.MaxWidth, cfg.Images.Quality),
	})

	log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.Backend.BaseURL).Msg("web front-end listening")
	if err := srv.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}

	ws.Close()
	if err := rc.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("stopped")
}
