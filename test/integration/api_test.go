package integration

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pbrandao/blogo/internal/config"
	"github.com/pbrandao/blogo/internal/db"
	"github.com/pbrandao/blogo/internal/middleware"
	"github.com/pbrandao/blogo/internal/posts"
	"github.com/pbrandao/blogo/internal/routes"
	"github.com/pbrandao/blogo/internal/view"
	"github.com/pbrandao/blogo/internal/web"
	"github.com/pbrandao/blogo/web/templates"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"
)

// setupTestServer monta a mesma cadeia de middlewares do servidor real,
// menos o CSRF e o rate limit, sobre um banco descartável.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "integration.db")
	dbConn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := dbConn.Ping(); err != nil {
		t.Fatal(err)
	}
	if err := db.RunMigrations(ctx, dbConn); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if err := db.Seed(ctx, dbConn); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	queries := db.New(dbConn)

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.New(dbConn)
	sessionManager.Lifetime = 24 * time.Hour

	renderer, err := view.NewRenderer(templates.FS)
	if err != nil {
		t.Fatal(err)
	}
	markdown, err := view.NewMarkdown(16)
	if err != nil {
		t.Fatal(err)
	}

	deps := web.HandlerDeps{
		Queries:        queries,
		QueriesWrite:   queries,
		Posts:          posts.NewService(queries, queries),
		SessionManager: sessionManager,
		Config:         &config.Config{Env: "test", Port: "8080", PostsPerPage: 10},
		Renderer:       renderer,
		Markdown:       markdown,
	}

	mux := http.NewServeMux()
	web.RegisterRoutes(mux, deps)

	mux.HandleFunc("GET "+routes.Health, func(w http.ResponseWriter, r *http.Request) {
		if err := dbConn.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.Recovery(
		middleware.SecurityHeaders(false)(
			middleware.Logger(
				sessionManager.LoadAndSave(
					middleware.LoadIdentity(sessionManager, queries, mux),
				),
			),
		),
	)

	server := httptest.NewServer(handler)

	t.Cleanup(func() {
		server.Close()
		dbConn.Close()
	})

	return server
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer(t)

	resp, err := server.Client().Get(server.URL + routes.Health)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestPublicPages(t *testing.T) {
	server := setupTestServer(t)

	pages := []string{routes.Home, routes.About, routes.Login, routes.Register}
	for _, page := range pages {
		resp, err := server.Client().Get(server.URL + page)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected status %d, got %d", page, http.StatusOK, resp.StatusCode)
		}
	}
}

func TestSeededStaffUserCanLogin(t *testing.T) {
	server := setupTestServer(t)

	client := server.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.PostForm(server.URL+routes.Login, map[string][]string{
		"username": {"admin"},
		"password": {"admin123"},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, resp.StatusCode)
	}
}

func TestNewPostRequiresAuth(t *testing.T) {
	server := setupTestServer(t)

	client := server.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Get(server.URL + routes.PostNew)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, resp.StatusCode)
	}
}
