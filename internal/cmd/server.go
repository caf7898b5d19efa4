package cmd

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/justinas/nosurf"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pbrandao/blogo/internal/config"
	"github.com/pbrandao/blogo/internal/db"
	"github.com/pbrandao/blogo/internal/logging"
	"github.com/pbrandao/blogo/internal/middleware"
	"github.com/pbrandao/blogo/internal/posts"
	"github.com/pbrandao/blogo/internal/routes"
	"github.com/pbrandao/blogo/internal/view"
	"github.com/pbrandao/blogo/internal/web"
	"github.com/pbrandao/blogo/web/templates"
)

func RunServer(assetsFS embed.FS) {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	logging.Init()
	logger := logging.Get()

	// Pool duplo: leituras paralelas, escritas serializadas. Os pragmas
	// (WAL, busy_timeout, foreign_keys) são aplicados pelo próprio pool.
	pool, err := db.NewDualPool("sqlite3", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		panic(err)
	}
	defer pool.Close()

	if err := db.RunMigrations(context.Background(), pool.Write); err != nil {
		logger.Error("failed to run migrations", "error", err)
		panic(err)
	}

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.New(pool.Write)
	sessionManager.Lifetime = 24 * time.Hour
	sessionManager.Cookie.Secure = cfg.Env == "prod"

	renderer, err := view.NewRenderer(templates.FS)
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		panic(err)
	}

	markdown, err := view.NewMarkdown(256)
	if err != nil {
		logger.Error("failed to init markdown cache", "error", err)
		panic(err)
	}

	queries := pool.Queries()
	postService := posts.NewService(queries, pool.QueriesWrite())

	mux := http.NewServeMux()
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))
	mux.Handle("GET "+routes.Metrics, promhttp.Handler())

	mux.HandleFunc("GET "+routes.Health, func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Read.PingContext(r.Context()); err != nil {
			logger.Error("health check failed: db unreachable", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	web.RegisterRoutes(mux, web.HandlerDeps{
		Queries:        queries,
		QueriesWrite:   pool.QueriesWrite(),
		Posts:          postService,
		SessionManager: sessionManager,
		Config:         cfg,
		Renderer:       renderer,
		Markdown:       markdown,
	})

	csrfHandler := nosurf.New(middleware.InjectCSRF(mux))
	csrfHandler.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		Secure:   cfg.Env == "prod",
	})
	handler := middleware.Recovery(
		middleware.RateLimit(
			middleware.SecurityHeaders(cfg.Env == "prod")(
				middleware.Logger(
					sessionManager.LoadAndSave(
						middleware.LoadIdentity(sessionManager, queries,
							csrfHandler,
						),
					),
				),
			),
		),
	)

	compressedHandler := gzhttp.GzipHandler(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      compressedHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("server stopping")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited properly")
}
