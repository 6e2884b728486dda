package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/confirmation"
	"reviewhub/internal/httpapi/handler"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/httpapi/service"
	"reviewhub/internal/mailer"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Error("could not connect to database", "error", err)
		os.Exit(1)
	}

	// Confirmation codes live in Redis; development falls back to an
	// in-process store so the API runs without a Redis instance.
	var codes confirmation.Store
	redisStore, err := confirmation.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.ConfirmationCodeTTL)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("could not connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		logger.Warn("redis unavailable, using in-memory confirmation store", "error", err)
		codes = confirmation.NewMemoryStore(cfg.ConfirmationCodeTTL)
	} else {
		codes = redisStore
	}

	mail := mailer.New(cfg, logger)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	// Sweep refresh tokens past their expiry once per boot; live ones are
	// rejected (and deleted) lazily on use.
	if err := refreshTokenRepo.DeleteExpired(context.Background()); err != nil {
		logger.Warn("failed to sweep expired refresh tokens", "error", err)
	}

	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	accountService := service.NewAccountService(userRepo, refreshTokenRepo, codes, mail, logger, cfg)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo, cfg.ScoreMin, cfg.ScoreMax)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.RegisterValidators()

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	// Signup and token exchange are anonymous and rate limited per IP.
	authGroup := api.Group("")
	authGroup.Use(middleware.RateLimit(rate.Every(time.Second), 5))
	handler.NewAuthHandler(accountService).RegisterRoutes(authGroup)

	// Everything else shares optional auth: public reads pass through
	// anonymously, writes check the identity against a policy.
	apiAuthed := api.Group("")
	apiAuthed.Use(middleware.OptionalAuth(accountService))

	handler.NewCategoryHandler(categoryService).RegisterRoutes(apiAuthed)
	handler.NewGenreHandler(genreService).RegisterRoutes(apiAuthed)
	handler.NewTitleHandler(titleService).RegisterRoutes(apiAuthed)
	handler.NewReviewHandler(reviewService).RegisterRoutes(apiAuthed)
	handler.NewCommentHandler(commentService).RegisterRoutes(apiAuthed)
	handler.NewUserHandler(accountService).RegisterRoutes(apiAuthed)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
