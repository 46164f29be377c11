package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Lalman888/ai-social-backend/internal/ai"
	"github.com/Lalman888/ai-social-backend/internal/authflow"
	"github.com/Lalman888/ai-social-backend/internal/config"
	httpserver "github.com/Lalman888/ai-social-backend/internal/http"
	"github.com/Lalman888/ai-social-backend/internal/metrics"
	"github.com/Lalman888/ai-social-backend/internal/oauth"
	"github.com/Lalman888/ai-social-backend/internal/oauth/facebook"
	"github.com/Lalman888/ai-social-backend/internal/oauth/google"
	"github.com/Lalman888/ai-social-backend/internal/oauth/instagram"
	"github.com/Lalman888/ai-social-backend/internal/observability/logger"
	"github.com/Lalman888/ai-social-backend/internal/rate"
	"github.com/Lalman888/ai-social-backend/internal/session"
	"github.com/Lalman888/ai-social-backend/internal/state"
	"github.com/Lalman888/ai-social-backend/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	defer logger.Sync()
	log := logger.L().With(logger.Component("service"))

	if err := metrics.Register(nil); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	if len(registry) == 0 {
		return errors.New("no provider has credentials configured")
	}
	log.Info("providers registered", logger.Any("providers", registry.Names()))

	states, err := state.New(state.Config{
		Kind:          cfg.State.Kind,
		RedisAddr:     cfg.State.Redis.Addr,
		RedisPassword: cfg.State.Redis.Password,
		RedisDB:       cfg.State.Redis.DB,
		RedisPrefix:   cfg.State.Redis.Prefix,
	})
	if err != nil {
		return fmt.Errorf("state store: %w", err)
	}
	defer states.Close()

	connMaxLifetime, _ := time.ParseDuration(cfg.Storage.Postgres.ConnMaxLifetime)
	users, err := store.New(ctx, store.Config{
		Kind:            cfg.Storage.Driver,
		DSN:             cfg.Storage.DSN,
		MaxConns:        cfg.Storage.Postgres.MaxOpenConns,
		MinConns:        cfg.Storage.Postgres.MinIdleConns,
		ConnMaxLifetime: connMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer users.Close()

	flow := authflow.New(authflow.Deps{
		Providers: registry,
		States:    states,
		Users:     users,
		Sessions:  session.NewIssuer(cfg.Session.Issuer, []byte(cfg.Session.Secret), cfg.SessionTTL()),
		StateTTL:  cfg.StateTTL(),
	})

	var aiClient *ai.Client
	if cfg.AI.APIKey != "" {
		timeout, _ := time.ParseDuration(cfg.AI.Timeout)
		aiClient, err = ai.New(ai.Config{
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Timeout: timeout,
		})
		if err != nil {
			return fmt.Errorf("ai client: %w", err)
		}
	}

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Flow:    flow,
		States:  states,
		Users:   users,
		AI:      aiClient,
		Limiter: buildLimiter(cfg),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildRegistry(cfg *config.Config) (oauth.Registry, error) {
	registry := oauth.Registry{}

	type entry struct {
		name string
		p    config.Provider
		ctor func(oauth.Config) (oauth.Adapter, error)
	}
	entries := []entry{
		{"google", cfg.Providers.Google, func(c oauth.Config) (oauth.Adapter, error) { return google.New(c) }},
		{"facebook", cfg.Providers.Facebook, func(c oauth.Config) (oauth.Adapter, error) { return facebook.New(c) }},
		{"instagram", cfg.Providers.Instagram, func(c oauth.Config) (oauth.Adapter, error) { return instagram.New(c) }},
	}
	for _, e := range entries {
		if !e.p.Enabled() {
			continue
		}
		a, err := e.ctor(oauth.Config{
			ClientID:     e.p.ClientID,
			ClientSecret: e.p.ClientSecret,
			RedirectURI:  e.p.RedirectURI,
			AuthorizeURL: e.p.AuthorizeURL,
			TokenURL:     e.p.TokenURL,
			ProfileURL:   e.p.ProfileURL,
			Scopes:       e.p.Scopes,
			Timeout:      e.p.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", e.name, err)
		}
		registry[e.name] = a
	}
	return registry, nil
}

func buildLimiter(cfg *config.Config) rate.Limiter {
	if !cfg.Rate.Enabled {
		return nil
	}
	window, err := time.ParseDuration(cfg.Rate.Login.Window)
	if err != nil || window <= 0 {
		window = time.Minute
	}
	if cfg.State.Kind == "redis" {
		client := rdb.NewClient(&rdb.Options{
			Addr:     cfg.State.Redis.Addr,
			Password: cfg.State.Redis.Password,
			DB:       cfg.State.Redis.DB,
		})
		return rate.NewRedisLimiter(client, "rl:login", cfg.Rate.Login.Limit, window)
	}
	return rate.NewMemoryLimiter(cfg.Rate.Login.Limit, window)
}
