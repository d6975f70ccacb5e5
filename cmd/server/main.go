// @title         NodalCV API
// @version       1.0
// @description   Résumé profiles: import from PDF or DOCX, edit, publish and tailor to job offers.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Access token. Both "Bearer <JWT>" and "<JWT>" are accepted.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	// internal imports
	"github.com/nodalcv/server/api/http"
	"github.com/nodalcv/server/api/http/handlers"
	_ "github.com/nodalcv/server/docs"
	"github.com/nodalcv/server/pkg/analytics"
	"github.com/nodalcv/server/pkg/auth"
	"github.com/nodalcv/server/pkg/cache/redis"
	"github.com/nodalcv/server/pkg/config"
	"github.com/nodalcv/server/pkg/cv"
	"github.com/nodalcv/server/pkg/editor"
	"github.com/nodalcv/server/pkg/health"
	"github.com/nodalcv/server/pkg/health/checkers"
	"github.com/nodalcv/server/pkg/llm/openrouter"
	"github.com/nodalcv/server/pkg/metrics"
	"github.com/nodalcv/server/pkg/optimize"
	pgrepo "github.com/nodalcv/server/pkg/repository/postgres"
	"github.com/nodalcv/server/pkg/security/jwt"
	"github.com/nodalcv/server/pkg/storage/postgres"
	"github.com/nodalcv/server/pkg/upload"
	"github.com/nodalcv/server/pkg/workflow"
)

const topKeywords = 10

func main() {
	// Load configuration from config.yaml, .env and the environment
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL and bring the schema up to date
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxConns:        int32(cfg.DatabaseConns),
		ApplicationName: "nodalcv",
	})
	if err != nil {
		fatal(log, "postgres connect", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		fatal(log, "migrate", err)
	}

	accountRepo := pgrepo.NewAccountRepository(pool)
	uploadRepo := pgrepo.NewUploadRepository(pool)

	readinessCheckers := []health.Checker{checkers.NewPingChecker("postgres", pool, time.Second)}

	// Redis is optional: without it public profiles are read through on every request
	var publicCache cv.Cache
	if cfg.RedisURL != "" {
		rc, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			fatal(log, "redis connect", err)
		}
		defer rc.Close()
		publicCache = rc
		readinessCheckers = append(readinessCheckers, checkers.NewPingChecker("redis", rc, time.Second))
	}

	wf := workflow.New(cfg.Workflow.BaseURL, cfg.Workflow.APIKey, cfg.WorkflowTimeout())
	readinessCheckers = append(readinessCheckers, checkers.NewPingChecker("workflow", wf, 3*time.Second))

	llmClient := openrouter.New(
		cfg.OpenRouter.APIKey,
		cfg.OpenRouter.BaseURL,
		cfg.OpenRouter.Model,
		cfg.OpenRouter.AppTitle,
		cfg.OpenRouter.Referer,
	)

	var parser upload.Parser = upload.NewWorkflowParser(wf)
	if cfg.ParserProvider == config.ProviderOpenRouter {
		parser = upload.NewLLMParser(llmClient)
	}
	var optimizer optimize.Backend = optimize.NewWorkflowBackend(wf)
	if cfg.OptimizerProvider == config.ProviderOpenRouter {
		optimizer = optimize.NewLLMBackend(llmClient)
	}
	log.Info("providers", "parser", cfg.ParserProvider, "optimizer", cfg.OptimizerProvider)

	// Access tokens are signed and verified by the same issuer
	tokens := jwt.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL())

	authUC := auth.NewService(accountRepo, tokens, log)
	uploadUC := upload.NewService(uploadRepo, parser, upload.Options{
		Dir:          cfg.Uploads.Dir,
		MaxBytes:     cfg.Uploads.MaxBytes,
		ExcerptChars: cfg.Uploads.ExcerptChars,
	}, log)
	profileUC := cv.NewService(wf, publicCache, cfg.PublicCacheTTL(), log)
	optimizeUC := optimize.NewService(optimizer, profileUC, uploadUC, log)
	analyticsUC := analytics.NewService(wf, profileUC, topKeywords)
	sessions := editor.NewStore(editor.Delays{
		Success:     cfg.Notices.Success(),
		LowEmphasis: cfg.Notices.LowEmphasis(),
	})
	go sessions.Run(ctx, cfg.Notices.SessionIdle(), time.Minute)

	// Health service: compose checkers
	readiness := health.NewService(readinessCheckers...)

	if cfg.GRPCHealthPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCHealthPort)
		if err != nil {
			fatal(log, "grpc health listen", err)
		}
		go func() {
			log.Info("gRPC health listening", "addr", lis.Addr().String())
			if err := health.NewGRPCServer(readiness, 10*time.Second).Serve(ctx, lis); err != nil {
				log.Error("grpc health stopped", "err", err)
			}
		}()
	}

	stats := metrics.New()
	app := fiber.New(fiber.Config{
		AppName:   "nodalcv",
		BodyLimit: int(cfg.Uploads.MaxBytes) + 1<<20,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(stats.Middleware())
	app.Get("/metrics", stats.Handler())

	// JWT auth middleware for protected routes
	authMW := jwt.NewAuthMiddleware(tokens)

	// Register routes
	http.Register(app, http.Handlers{
		Auth:      handlers.NewAuthHandler(authUC),
		Health:    handlers.NewHealthHandler(readiness),
		Uploads:   handlers.NewUploadsHandler(uploadUC, sessions, cfg.Uploads.MaxBytes, stats),
		Profiles:  handlers.NewProfilesHandler(profileUC),
		Public:    handlers.NewPublicHandler(profileUC, analyticsUC),
		Editor:    handlers.NewEditorHandler(profileUC, sessions, stats),
		Optimize:  handlers.NewOptimizeHandler(optimizeUC),
		Analytics: handlers.NewAnalyticsHandler(analyticsUC),
	}, authMW)

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("http shutdown", "err", err)
		}
	}()

	// Start server
	log.Info("HTTP server listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil && !errors.Is(err, net.ErrClosed) {
		fatal(log, "server stopped", err)
	}
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}
