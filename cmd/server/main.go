// Command echo-server starts the Echo gRPC API and its public HTTP surface.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	echov1 "github.com/ferdousbhai/echo/api/echo/v1"
	"github.com/ferdousbhai/echo/internal/config"
	"github.com/ferdousbhai/echo/internal/limiter"
	"github.com/ferdousbhai/echo/internal/migrate"
	"github.com/ferdousbhai/echo/internal/notify"
	"github.com/ferdousbhai/echo/internal/repository/postgres"
	grpcserver "github.com/ferdousbhai/echo/internal/server/grpc"
	"github.com/ferdousbhai/echo/internal/server/httpapi"
	"github.com/ferdousbhai/echo/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations and serves until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:], ".env")
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}

	logger := newLogger(cfg.Dev)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("httpAddr", cfg.HTTPAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("db pool", zap.Error(err))
	}
	defer db.Close()

	feed, err := openFeed(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("change feed", zap.Error(err))
	}
	defer func() { _ = feed.Close() }()

	repos := service.Repos{
		Users:      postgres.NewUserRepo(db),
		Workspaces: postgres.NewWorkspaceRepo(db),
		Invites:    postgres.NewInviteRepo(db),
		Channels:   postgres.NewChannelRepo(db),
		DMs:        postgres.NewDMRepo(db),
		Messages:   postgres.NewMessageRepo(db),
		Reactions:  postgres.NewReactionRepo(db),
	}
	opts := service.Options{Log: logger, Feed: feed}

	lim, err := limiter.New(cfg.LoginStore, db.Pool, cfg.Limiter)
	if err != nil {
		logger.Fatal("login limiter", zap.Error(err))
	}
	authSvc := service.NewAuthService(repos.Users, []byte(cfg.JWTKey), cfg.AccessTTL, lim, logger)
	workspaces := service.NewWorkspaceService(repos, opts)

	srvOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.LoggingUnary(logger),
			grpcserver.AuthUnary(authSvc),
		),
		grpc.ChainStreamInterceptor(
			grpcserver.RecoverStream(logger),
			grpcserver.LoggingStream(logger),
			grpcserver.AuthStream(authSvc),
		),
	}
	if cfg.TLS() {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			logger.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		srvOpts = append(srvOpts, grpc.Creds(creds))
	} else {
		logger.Warn("serving without TLS")
	}
	s := grpc.NewServer(srvOpts...)

	app := grpcserver.New(grpcserver.Services{
		Auth:       authSvc,
		Users:      service.NewUserService(repos, opts),
		Workspaces: workspaces,
		Channels:   service.NewChannelService(repos, opts),
		DMs:        service.NewDMService(repos, opts),
		Messages:   service.NewMessageService(repos, opts),
		Reactions:  service.NewReactionService(repos, opts),
		Feed:       service.NewFeedService(repos, feed, opts),
	}, logger)
	echov1.RegisterEchoServer(s, app)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if cfg.Dev {
		reflection.Register(s)
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("grpc listening", zap.String("addr", cfg.Addr), zap.Bool("tls", cfg.TLS()))
		errCh <- s.Serve(lis)
	}()

	var hsrv *http.Server
	if cfg.HTTPAddr != "" {
		hsrv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewRouter(workspaces, db, logger),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		go func() {
			logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
			var err error
			if cfg.TLS() {
				err = hsrv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			} else {
				err = hsrv.ListenAndServe()
			}
			if !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		hs.Shutdown()
		shutdown(logger, s, hsrv)
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		s.Stop()
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func newLogger(dev bool) *zap.Logger {
	if dev {
		l, _ := zap.NewDevelopment()
		return l
	}
	l, _ := zap.NewProduction()
	return l
}

// openFeed selects Redis Pub/Sub when configured and the in-process feed otherwise.
func openFeed(ctx context.Context, redisURL string) (notify.Feed, error) {
	if redisURL == "" {
		return notify.NewLocal(), nil
	}
	return notify.NewRedis(ctx, redisURL)
}

func shutdown(logger *zap.Logger, s *grpc.Server, hsrv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if hsrv != nil {
		if err := hsrv.Shutdown(ctx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
	}

	// Watch streams only end when clients leave, so bound the graceful stop.
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.Stop()
	}
}
