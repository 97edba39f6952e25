// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/awasec/awa-cms/internal/auth"
	"github.com/awasec/awa-cms/internal/cache"
	"github.com/awasec/awa-cms/internal/config"
	"github.com/awasec/awa-cms/internal/geoip"
	"github.com/awasec/awa-cms/internal/handler/api"
	"github.com/awasec/awa-cms/internal/i18n"
	"github.com/awasec/awa-cms/internal/logging"
	"github.com/awasec/awa-cms/internal/middleware"
	"github.com/awasec/awa-cms/internal/scheduler"
	"github.com/awasec/awa-cms/internal/service"
	"github.com/awasec/awa-cms/internal/store"
	"github.com/awasec/awa-cms/internal/translate"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "AWA CMS - bilingual site, dashboard and client portal backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AWA_TOKEN_SECRET       Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AWA_DB_PATH            SQLite database path (default: ./data/awacms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AWA_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AWA_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AWA_ALLOWED_ORIGINS    Comma-separated SPA origins for CORS\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AWA_REDIS_URL          Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AWA_GEOIP_DB_PATH      GeoLite2-Country.mmdb path for login auditing (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AWA_TRANSLATE_API_KEY  API key for Arabic translation assist (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("awacms %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Initialize i18n for API response localization
	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}
	slog.Info("i18n system initialized", "languages", i18n.SupportedLanguages)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Seed default data
	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Initialize content cache
	cacheBackend := cache.NewCache(cache.CacheConfig{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	cacheManager := cache.NewManager(cacheBackend)
	defer func() {
		if err := cacheManager.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	// Initialize portal session manager backed by the sessions table
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.New(db)
	sessionManager.Lifetime = 12 * time.Hour
	sessionManager.Cookie.Name = "awa_portal_session"
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Secure = !cfg.IsDevelopment()
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	slog.Info("portal session manager initialized")

	// GeoIP lookup for login auditing (optional)
	geo := geoip.NewLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			slog.Warn("geoip disabled", "error", err)
		} else {
			slog.Info("geoip lookup initialized", "path", cfg.GeoIPDBPath)
		}
	}
	defer func() {
		if err := geo.Close(); err != nil {
			slog.Error("error closing geoip database", "error", err)
		}
	}()

	// Arabic translation assist (optional)
	translator := translate.New(translate.Options{
		BaseURL: cfg.TranslateBaseURL,
		APIKey:  cfg.TranslateAPIKey,
		Model:   cfg.TranslateModel,
	})
	if translator.Enabled() {
		slog.Info("translation assist enabled", "model", cfg.TranslateModel)
	}

	// Services
	tokens := auth.NewTokenManager(cfg.TokenSecret)
	mediaService := service.NewMediaService(db, cfg.UploadsDir)
	notifyService := service.NewNotifyService(db)
	eventService := service.NewEventService(db)
	invoiceRenderer := service.NewInvoiceRenderer("")

	// Initialize and start scheduler
	sched := scheduler.New(db, geo, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Initialize login protection
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Rate limiters: a tight one for login endpoints, a wide one for the API
	loginRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)
	apiRateLimiter := middleware.NewGlobalRateLimiter(100, 200)

	apiHandler := api.NewHandler(api.Deps{
		DB:          db,
		Tokens:      tokens,
		Sessions:    sessionManager,
		Cache:       cacheManager,
		Media:       mediaService,
		Notify:      notifyService,
		Events:      eventService,
		Invoices:    invoiceRenderer,
		Translator:  translator,
		Geo:         geo,
		LoginShield: loginProtection,
	})

	// CSRF protection for the cookie-authenticated portal routes
	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig(
		[]byte(cfg.TokenSecret), cfg.AllowedOrigins, cfg.IsDevelopment()))

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.RequestPath)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Lang"},
		ExposedHeaders:   []string{"X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// REST API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiRateLimiter.Middleware())
		r.Use(middleware.Language())

		// Public endpoints (no authentication required)
		r.Get("/status", apiHandler.Status)
		r.Get("/pages/{page}/sections", apiHandler.ListPublicSections)
		r.Get("/pages/{page}/sections/{kind}", apiHandler.GetPublicSectionByKind)
		r.Get("/services", apiHandler.ListPublicServices)
		r.Get("/services/{slug}", apiHandler.GetPublicService)
		r.Get("/articles", apiHandler.ListPublicArticles)
		r.Get("/articles/{slug}", apiHandler.GetPublicArticle)
		r.With(loginRateLimiter.Middleware()).Post("/quotes", apiHandler.SubmitQuote)

		// Dashboard auth
		r.Group(func(r chi.Router) {
			r.Use(loginRateLimiter.Middleware())
			r.With(loginProtection.Middleware()).Post("/auth/login", apiHandler.Login)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(tokens, db))
			r.Get("/auth/me", apiHandler.Me)
			r.Post("/auth/password", apiHandler.ChangePassword)
		})

		// Dashboard routes (staff)
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.BearerAuth(tokens, db))
			r.Use(middleware.RequireStaff())
			r.Use(middleware.UserRateLimit(25, 50))

			r.Get("/dashboard", apiHandler.Dashboard)

			r.Get("/articles", apiHandler.ListArticles)
			r.Post("/articles", apiHandler.CreateArticle)
			r.Get("/articles/{id}", apiHandler.GetArticle)
			r.Put("/articles/{id}", apiHandler.UpdateArticle)
			r.Delete("/articles/{id}", apiHandler.DeleteArticle)

			r.Get("/services", apiHandler.ListServices)
			r.Post("/services", apiHandler.CreateService)
			r.Get("/services/{id}", apiHandler.GetService)
			r.Put("/services/{id}", apiHandler.UpdateService)
			r.Delete("/services/{id}", apiHandler.DeleteService)

			r.Get("/sections", apiHandler.ListSections)
			r.Post("/sections", apiHandler.CreateSection)
			r.Get("/sections/{id}", apiHandler.GetSection)
			r.Put("/sections/{id}", apiHandler.UpdateSection)
			r.Delete("/sections/{id}", apiHandler.DeleteSection)

			r.Get("/quotes", apiHandler.ListQuotes)
			r.Get("/quotes/{id}", apiHandler.GetQuote)
			r.Patch("/quotes/{id}", apiHandler.UpdateQuoteStatus)
			r.Delete("/quotes/{id}", apiHandler.DeleteQuote)

			r.Get("/projects", apiHandler.ListProjects)
			r.Post("/projects", apiHandler.CreateProject)
			r.Get("/projects/{id}", apiHandler.GetProject)
			r.Put("/projects/{id}", apiHandler.UpdateProject)
			r.Delete("/projects/{id}", apiHandler.DeleteProject)
			r.Post("/projects/{id}/access-code", apiHandler.RegenerateAccessCode)
			r.Put("/projects/{id}/phases", apiHandler.ReplacePhases)
			r.Post("/projects/{id}/payments", apiHandler.CreatePayment)
			r.Patch("/projects/{id}/payments/{paymentID}", apiHandler.UpdatePaymentStatus)
			r.Delete("/projects/{id}/payments/{paymentID}", apiHandler.DeletePayment)
			r.Get("/projects/{id}/payments/{paymentID}/invoice", apiHandler.DownloadInvoice)
			r.Get("/projects/{id}/invoices", apiHandler.DownloadInvoiceArchive)
			r.Post("/projects/{id}/files", apiHandler.UploadProjectFile)
			r.Get("/projects/{id}/files/{fileID}", apiHandler.DownloadProjectFile)
			r.Delete("/projects/{id}/files/{fileID}", apiHandler.DeleteProjectFile)

			r.Get("/notifications", apiHandler.ListNotifications)
			r.Get("/notifications/unread-count", apiHandler.UnreadNotificationCount)
			r.Post("/notifications/read-all", apiHandler.MarkAllNotificationsRead)
			r.Post("/notifications/{id}/read", apiHandler.MarkNotificationRead)
			r.Delete("/notifications/{id}", apiHandler.DeleteNotification)

			r.Post("/uploads/images", apiHandler.UploadImage)
			r.Post("/translate", apiHandler.Translate)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				r.Get("/users", apiHandler.ListUsers)
				r.Post("/users", apiHandler.CreateUser)
				r.Get("/users/{id}", apiHandler.GetUser)
				r.Put("/users/{id}", apiHandler.UpdateUser)
				r.Delete("/users/{id}", apiHandler.DeleteUser)
				r.Post("/users/{id}/login-code", apiHandler.ResetLoginCode)

				r.Get("/events", apiHandler.ListEvents)

				r.Get("/cache", apiHandler.CacheStats)
				r.Delete("/cache", apiHandler.ClearCache)
			})
		})

		// Client portal routes (cookie session)
		r.Route("/portal", func(r chi.Router) {
			r.Use(sessionManager.LoadAndSave)
			r.Use(csrfMiddleware)

			r.Group(func(r chi.Router) {
				r.Use(loginRateLimiter.Middleware())
				r.With(loginProtection.Middleware()).Post("/login", apiHandler.PortalLogin)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.PortalAuth(sessionManager, db))
				r.Post("/logout", apiHandler.PortalLogout)
				r.Get("/project", apiHandler.PortalProject)
				r.Post("/project/files", apiHandler.PortalUploadFile)
				r.Get("/project/files/{fileID}", apiHandler.PortalDownloadFile)
				r.Delete("/project/files/{fileID}", apiHandler.PortalDeleteFile)
				r.Get("/project/payments/{paymentID}/invoice", apiHandler.PortalDownloadInvoice)
				r.Get("/project/invoices", apiHandler.PortalDownloadInvoiceArchive)
			})
		})
	})
	slog.Info("REST API v1 mounted at /api/v1")

	// Serve uploaded files (article imagery and thumbnails). Project
	// attachments live under the same tree but are only reachable through
	// the authenticated download endpoints by their UUID paths.
	uploadsHandler := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
	r.Handle("/uploads/*", uploadsHandler)

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
