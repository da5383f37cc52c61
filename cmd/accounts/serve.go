package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	myPostgresRepo "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/db/postgres"
	myHttp "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/jwt"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/password"
	appsvc "github.com/Miraines/MoonyAndStarry/account-service/internal/app/account/service"
	domainjwt "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/jwt"
	domainpwd "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/password"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	infradb "github.com/Miraines/MoonyAndStarry/account-service/internal/infra/db"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/migrate"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/server"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, zapLog, err := bootstrap()
			if err != nil {
				return err
			}
			defer zapLog.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := runServe(ctx, cfg, zapLog); err != nil {
				zapLog.Error("server terminated", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) error {
	db, err := infradb.Open(ctx, cfg.DatabaseURL, infradb.PoolConfig{
		MinConns:    cfg.DBPoolMin,
		MaxConns:    cfg.DBPoolMax,
		MaxLifetime: cfg.DBConnMaxLifetime,
	}, zapLog)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := migrate.Up(ctx, sqlDB); err != nil {
		return err
	}

	hasher, err := password.NewHasher(password.Config{
		Algorithm:   domainpwd.Algorithm(cfg.PasswordHashAlgorithm),
		WorkFactor:  cfg.PasswordWorkFactor,
		MemoryKiB:   cfg.PasswordMemoryKiB,
		Parallelism: cfg.PasswordParallelism,
		Pepper:      cfg.PasswordPepper,
	})
	if err != nil {
		return err
	}
	codec, err := jwt.NewJWTUtil(jwt.Config{
		SecretKey:  cfg.JWTSecretKey,
		Algorithm:  domainjwt.Algorithm(cfg.JWTAlgorithm),
		TTLMinutes: cfg.JWTExpireMinutes,
	})
	if err != nil {
		return err
	}

	accountRepo := myPostgresRepo.NewPostgresAccountRepo(db, cfg.DBAcquireTimeout)
	svc, err := appsvc.New(accountRepo, hasher, codec, validator.New(), zapLog.Named("accounts"))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, "accounts"),
	)

	router := myHttp.NewRouter(
		myHttp.NewHandler(svc, accountRepo, zapLog),
		zapLog,
		myHttp.RouterOptions{
			AllowedOrigins: cfg.AllowedOrigins,
			Registry:       reg,
			ServeMetrics:   cfg.MetricsAddress == "",
		},
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.StartHTTPServer(gctx, cfg.HTTPAddress, router, zapLog)
	})
	if cfg.MetricsAddress != "" {
		g.Go(func() error {
			return server.StartHTTPServer(gctx, cfg.MetricsAddress,
				promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), zapLog.Named("metrics"))
		})
	}
	return g.Wait()
}
