package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/catalog"
	"github.com/fjod/go_cart/storefront-service/internal/config"
	"github.com/fjod/go_cart/storefront-service/internal/health"
	apihttp "github.com/fjod/go_cart/storefront-service/internal/http"
	"github.com/fjod/go_cart/storefront-service/internal/logger"
	"github.com/fjod/go_cart/storefront-service/internal/session"
	"github.com/fjod/go_cart/storefront-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const healthCheckInterval = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the storefront service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.Development())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, storage.Options{
		Driver:        cfg.Storage.Driver,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		SQLitePath:    cfg.Storage.SQLitePath,
		PostgresDSN:   cfg.Storage.PostgresDSN,
		MongoURI:      cfg.Storage.MongoURI,
		MongoDBName:   cfg.Storage.MongoDBName,
	})
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer kv.Close()
	log.Info("storage ready", zap.String("driver", cfg.Storage.Driver))

	cache, closeCache, err := newProductCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	products := catalog.NewService(catalog.NewClient(cfg.ProductAPI.URL, cfg.ProductAPI.Timeout), cache, log)

	sessions := session.NewManager(kv, cfg.Session.IdleTTL, log)
	defer sessions.Close()

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: apihttp.NewRouter(apihttp.RouterConfig{
			Catalog:            products,
			Sessions:           sessions,
			Tokens:             session.NewTokens(cfg.Session.Secret, cfg.Session.TokenTTL),
			Logger:             log,
			RequestTimeout:     cfg.RequestTimeout,
			MaxRequestBodySize: cfg.MaxRequestBodySize,
			AuthRPS:            cfg.AuthLimit.RPS,
			AuthBurst:          cfg.AuthLimit.Burst,
			SecureCookies:      !cfg.Development(),
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	grpcServer := grpc.NewServer()
	monitor := health.NewMonitor(kv, healthCheckInterval, log)
	monitor.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc health server starting", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		monitor.Run(gctx)
		return nil
	})

	if len(cfg.Catalog.KafkaBrokers) > 0 {
		invalidator := catalog.NewInvalidator(
			catalog.NewKafkaReader(cfg.Catalog.KafkaBrokers, cfg.Catalog.KafkaTopic, cfg.Catalog.KafkaGroupID),
			products,
			log,
		)
		defer invalidator.Close()
		g.Go(func() error {
			log.Info("catalog invalidator starting", zap.String("topic", cfg.Catalog.KafkaTopic))
			invalidator.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}

// newProductCache builds the catalog cache named by the config. The returned
// func releases any connection it opened.
func newProductCache(ctx context.Context, cfg *config.Config) (catalog.ProductCache, func(), error) {
	if cfg.Catalog.Cache != "redis" {
		return catalog.NewMemoryCache(cfg.Catalog.CacheTTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Storage.RedisAddr,
		Password: cfg.Storage.RedisPassword,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return catalog.NewRedisCache(client, cfg.Catalog.CacheTTL), func() { client.Close() }, nil
}
