package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jewel-billing/internal/assistant"
	"go-jewel-billing/internal/auth"
	"go-jewel-billing/internal/config"
	"go-jewel-billing/internal/database"
	"go-jewel-billing/internal/export"
	"go-jewel-billing/internal/handlers"
	"go-jewel-billing/internal/logging"
	"go-jewel-billing/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.NewLogger("console", "info")
		boot.Fatal().Err(err).Msg("config")
	}
	log := logging.NewLogger(cfg.LogFormat, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	store := database.NewStore(db)
	if seeded, err := store.SeedDefaultRates(ctx); err != nil {
		return err
	} else if seeded {
		log.Info().Msg("seeded default rates")
	}

	tokens, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	defaults := assistant.Defaults{CgstPct: cfg.DefaultCgstPct, SgstPct: cfg.DefaultSgstPct}

	// Without a key the assistant still answers from local data.
	var summarizer assistant.Summarizer
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiSummarizer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn().Err(err).Msg("gemini disabled")
		} else {
			defer gemini.Close()
			summarizer = gemini
		}
	}
	agent := assistant.NewAgent(store, summarizer, defaults, log.With().Str("component", "assistant").Logger())

	m := metrics.New("billing", nil)
	h := handlers.New(handlers.Deps{
		Store:     store,
		Tokens:    tokens,
		Assistant: agent,
		Backup:    export.NewWorkbook(cfg.ExcelBackupPath),
		Metrics:   m,
		Log:       log,
		Defaults:  defaults,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger(log), m.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := h.Routes(r, handlers.RouteOptions{
		AllowRegistration: cfg.AllowRegistration,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		AssistantRate:     cfg.AssistantRateLimit,
	}); err != nil {
		return err
	}
	if cfg.AllowRegistration {
		log.Warn().Msg("registration route is OPEN, disable it in production")
	}

	// SPA: static assets, and index.html for every other path so the
	// frontend router handles refreshes on /invoice, /reports and so on.
	r.Static("/assets", "./web/assets")
	r.StaticFile("/vite.svg", "./web/vite.svg")
	r.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_url", cfg.BaseURL).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}
