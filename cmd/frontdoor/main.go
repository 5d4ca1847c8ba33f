// frontdoor is the browser-facing console of the identity provider: the
// sign-in callback flow and the post-login prompt workflow.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/frontdoor/internal/backend"
	"github.com/dropDatabas3/frontdoor/internal/config"
	ctrlauth "github.com/dropDatabas3/frontdoor/internal/http/controllers/auth"
	ctrlprompt "github.com/dropDatabas3/frontdoor/internal/http/controllers/prompt"
	"github.com/dropDatabas3/frontdoor/internal/http/middlewares"
	"github.com/dropDatabas3/frontdoor/internal/http/router"
	svcauth "github.com/dropDatabas3/frontdoor/internal/http/services/auth"
	svcprompt "github.com/dropDatabas3/frontdoor/internal/http/services/prompt"
	"github.com/dropDatabas3/frontdoor/internal/metrics"
	"github.com/dropDatabas3/frontdoor/internal/observability/logger"
	"github.com/dropDatabas3/frontdoor/internal/rate"
	"github.com/dropDatabas3/frontdoor/internal/security/flowseal"
	"github.com/dropDatabas3/frontdoor/internal/session"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "frontdoor",
		Short: "Identity provider console: sign-in callback and prompt workflow",
	}

	var configPath string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the console server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	serveCmd.Flags().StringVarP(&configPath, "config", "c", os.Getenv("FRONTDOOR_CONFIG"), "path to config.yaml")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	root.AddCommand(serveCmd, versionCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(configPath string) error {
	// .env is optional; system env still applies without it.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	if err := metrics.Register(nil); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	sealer, err := flowseal.New(cfg.Security.FlowMasterKey)
	if err != nil {
		return fmt.Errorf("flow sealer: %w", err)
	}

	var sessions session.Store
	var redisClient *redis.Client
	switch cfg.Session.Store.Kind {
	case "redis":
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Session.Store.Redis.Addr,
			DB:   cfg.Session.Store.Redis.DB,
		})
		sessions = session.NewRedis(redisClient, cfg.Session.Store.Redis.Prefix, cfg.Session.TTL)
	default:
		sessions = session.NewMemory(cfg.Session.TTL)
	}

	// Limiter follows the session store: shared when redis backs sessions.
	var limiter rate.Limiter
	if cfg.RateLimit.Max > 0 {
		if redisClient != nil {
			limiter = rate.NewRedisLimiter(redisClient, "", cfg.RateLimit.Max, cfg.RateLimit.Window)
		} else {
			limiter = rate.NewMemoryLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
		}
	}

	tokens := session.NewTokenCodec([]byte(cfg.Security.JWTKey), cfg.Security.JWTIssuer, cfg.Security.JWTTTL)
	sessionCfg := middlewares.SessionConfig{
		Store:        sessions,
		Tokens:       tokens,
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
		TTL:          cfg.Session.TTL,
	}

	be := backend.New(cfg.Backend.URL, cfg.Backend.Timeout)

	flowSvc := svcauth.NewFlowService(be, sealer)
	callbackSvc := svcauth.NewCallbackService(be, sealer, sessions, cfg.Server.Origin)
	promptSvc := svcprompt.NewService(be, cfg.Server.Origin)

	handler := router.New(router.Deps{
		Sessions: sessionCfg,
		Flow:     ctrlauth.NewFlowController(flowSvc, cfg.Session.CookieSecure),
		Callback: ctrlauth.NewCallbackController(callbackSvc, sessionCfg, cfg.Server.Origin),
		Session:  ctrlauth.NewSessionController(sessionCfg, be, promptSvc),
		Prompt:   ctrlprompt.NewController(promptSvc),
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Sugar().Infof("frontdoor %s listening on %s (backend %s)", version, cfg.Server.Addr, cfg.Backend.URL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", logger.Err(err))
		return err
	}
	log.Info("bye")
	return nil
}
