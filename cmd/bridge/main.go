package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cacheadapter "github.com/rcnpstock/schweb-email-login/internal/adapter/cache"
	"github.com/rcnpstock/schweb-email-login/internal/adapter/schwab"
	"github.com/rcnpstock/schweb-email-login/internal/config"
	httptransport "github.com/rcnpstock/schweb-email-login/internal/http"
	"github.com/rcnpstock/schweb-email-login/internal/http/handler"
	"github.com/rcnpstock/schweb-email-login/internal/repository"
	"github.com/rcnpstock/schweb-email-login/internal/server"
	authservice "github.com/rcnpstock/schweb-email-login/internal/service/auth"
	tradeservice "github.com/rcnpstock/schweb-email-login/internal/service/trade"
	"github.com/rcnpstock/schweb-email-login/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newPGXPool,
			newCredentialRepository,
			newTokenRepository,
			newLoginStateStore,
			newBrokerHTTPClient,
			newTokenClient,
			newTraderClient,
			authservice.NewOAuthService,
			newRefresher,
			tradeservice.NewOrderService,
			handler.NewOAuthHandler,
			handler.NewConfigHandler,
			handler.NewWebhookHandler,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, startRefresher, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	node, err := snowflake.NewNode(1)
	return node, err
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newCredentialRepository(pool *pgxpool.Pool, node *snowflake.Node) repository.CredentialRepository {
	return repository.NewPostgresCredentialRepo(pool, node)
}

func newTokenRepository(pool *pgxpool.Pool, node *snowflake.Node) repository.TokenRepository {
	return repository.NewPostgresTokenRepo(pool, node)
}

// newLoginStateStore uses redis when configured, otherwise an in-process
// store. Login state only needs to survive the authorize roundtrip.
func newLoginStateStore(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (repository.LoginStateStore, error) {
	if cfg.RedisAddr == "" {
		logger.Info("no redis configured, using in-memory login state store")
		return cacheadapter.NewMemoryStateStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return cacheadapter.NewRedisStateStore(client), nil
}

func newBrokerHTTPClient(cfg config.Config) *http.Client {
	return &http.Client{Timeout: cfg.BrokerTimeout}
}

func newTokenClient(cfg config.Config, client *http.Client) schwab.TokenClient {
	return schwab.NewHTTPTokenClient(cfg.SchwabTokenURL, client)
}

func newTraderClient(cfg config.Config, client *http.Client) schwab.TraderClient {
	return schwab.NewHTTPTraderClient(cfg.SchwabAPIBase, client)
}

func newRefresher(svc authservice.OAuthService, cfg config.Config, logger *zap.Logger) *authservice.Refresher {
	return authservice.NewRefresher(svc, cfg.RefreshInterval, logger)
}

// startRefresher runs the unattended refresh loop for the process lifetime.
func startRefresher(lc fx.Lifecycle, refresher *authservice.Refresher) {
	var cancel context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			go refresher.Run(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			if cancel != nil {
				cancel()
			}
			return nil
		},
	})
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
