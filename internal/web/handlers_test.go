package web

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pbrandao/blogo/internal/config"
	"github.com/pbrandao/blogo/internal/db"
	"github.com/pbrandao/blogo/internal/identity"
	"github.com/pbrandao/blogo/internal/middleware"
	"github.com/pbrandao/blogo/internal/posts"
	"github.com/pbrandao/blogo/internal/routes"
	"github.com/pbrandao/blogo/internal/view"
	"github.com/pbrandao/blogo/web/templates"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"
	_ "github.com/mattn/go-sqlite3"
)

const testPassword = "senha12345"

type testServer struct {
	DB      *sql.DB
	Queries *db.Queries
	Posts   *posts.Service
	Server  *httptest.Server
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	dbConn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		t.Fatal(err)
	}

	if err := db.RunMigrations(context.Background(), dbConn); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}

	queries := db.New(dbConn)

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.New(dbConn)
	sessionManager.Lifetime = time.Hour

	renderer, err := view.NewRenderer(templates.FS)
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}

	markdown, err := view.NewMarkdown(16)
	if err != nil {
		t.Fatal(err)
	}

	postService := posts.NewService(queries, queries)

	deps := HandlerDeps{
		Queries:        queries,
		QueriesWrite:   queries,
		Posts:          postService,
		SessionManager: sessionManager,
		Config:         &config.Config{Env: "test", Port: "8080", PostsPerPage: 10},
		Renderer:       renderer,
		Markdown:       markdown,
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux, deps)

	handler := middleware.Recovery(
		sessionManager.LoadAndSave(
			middleware.LoadIdentity(sessionManager, queries, mux),
		),
	)

	server := httptest.NewServer(handler)

	ts := &testServer{
		DB:      dbConn,
		Queries: queries,
		Posts:   postService,
		Server:  server,
	}

	t.Cleanup(func() {
		server.Close()
		dbConn.Close()
	})

	return ts
}

// newClient retorna um client com cookie jar (para manter a sessão) e que
// não segue redirects, para que os testes possam inspecionar o 303.
func (ts *testServer) newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (ts *testServer) createUser(t *testing.T, username string, isStaff bool) db.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	user, err := ts.Queries.CreateUser(context.Background(), db.CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsStaff:      isStaff,
	})
	if err != nil {
		t.Fatal(err)
	}
	return user
}

func (ts *testServer) login(t *testing.T, client *http.Client, username string) {
	t.Helper()

	resp, err := client.PostForm(ts.Server.URL+routes.Login, url.Values{
		"username": {username},
		"password": {testPassword},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login de %s: expected status %d, got %d", username, http.StatusSeeOther, resp.StatusCode)
	}
}

func (ts *testServer) createPost(t *testing.T, author db.User, title string) db.Post {
	t.Helper()

	actor := identity.Identity{
		UserID:        author.ID,
		Username:      author.Username,
		IsStaff:       author.IsStaff,
		Authenticated: true,
	}
	post, err := ts.Posts.Create(context.Background(), actor, title, "conteúdo de "+title)
	if err != nil {
		t.Fatal(err)
	}
	return post
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestHomePage(t *testing.T) {
	ts := setupTestServer(t)
	author := ts.createUser(t, "alice", false)
	ts.createPost(t, author, "Primeiro post")

	resp, err := ts.Server.Client().Get(ts.Server.URL + routes.Home)
	if err != nil {
		t.Fatal(err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Primeiro post") {
		t.Error("expected home page to list the post")
	}
}

func TestPostDetail(t *testing.T) {
	ts := setupTestServer(t)
	author := ts.createUser(t, "alice", false)
	post := ts.createPost(t, author, "Post visível")

	t.Run("Found", func(t *testing.T) {
		resp, err := ts.Server.Client().Get(ts.Server.URL + routes.PostDetail(post.ID))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
		}
		if body := readBody(t, resp); !strings.Contains(body, "Post visível") {
			t.Error("expected detail page to contain the title")
		}
	})

	t.Run("UnknownID", func(t *testing.T) {
		resp, err := ts.Server.Client().Get(ts.Server.URL + routes.PostDetail(9999))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
		}
	})

	t.Run("MalformedID", func(t *testing.T) {
		resp, err := ts.Server.Client().Get(ts.Server.URL + "/post/abc")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
		}
	})
}

func TestUserPostsPage(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.createUser(t, "alice", false)
	ts.createUser(t, "bob", false)
	ts.createPost(t, alice, "Post da alice")

	t.Run("KnownAuthor", func(t *testing.T) {
		resp, err := ts.Server.Client().Get(ts.Server.URL + routes.UserPosts("alice"))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
		}
		if body := readBody(t, resp); !strings.Contains(body, "Post da alice") {
			t.Error("expected author page to list the post")
		}
	})

	t.Run("UnknownAuthor", func(t *testing.T) {
		resp, err := ts.Server.Client().Get(ts.Server.URL + routes.UserPosts("ninguem"))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
		}
	})
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	ts := setupTestServer(t)
	client := ts.newClient(t)

	t.Run("NewPostForm", func(t *testing.T) {
		resp, err := client.Get(ts.Server.URL + routes.PostNew)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusSeeOther {
			t.Errorf("expected status %d, got %d", http.StatusSeeOther, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != routes.Login {
			t.Errorf("expected redirect to %s, got %s", routes.Login, loc)
		}
	})

	t.Run("CreatePost", func(t *testing.T) {
		resp, err := client.PostForm(ts.Server.URL+routes.PostNew, url.Values{
			"title":   {"Tentativa anônima"},
			"content": {"não deve entrar"},
		})
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusSeeOther {
			t.Errorf("expected status %d, got %d", http.StatusSeeOther, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != routes.Login {
			t.Errorf("expected redirect to %s, got %s", routes.Login, loc)
		}
	})
}

func TestCreatePostFlow(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "alice", false)

	client := ts.newClient(t)
	ts.login(t, client, "alice")

	resp, err := client.PostForm(ts.Server.URL+routes.PostNew, url.Values{
		"title":   {"Post via formulário"},
		"content": {"# Olá\n\ncorpo do post"},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, resp.StatusCode)
	}

	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "/post/") {
		t.Fatalf("expected redirect to the new post, got %s", location)
	}

	detail, err := client.Get(ts.Server.URL + location)
	if err != nil {
		t.Fatal(err)
	}
	if detail.StatusCode != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, detail.StatusCode)
	}
	if body := readBody(t, detail); !strings.Contains(body, "Post via formulário") {
		t.Error("expected detail page to show the created post")
	}
}

func TestCreatePostValidationRerendersForm(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "alice", false)

	client := ts.newClient(t)
	ts.login(t, client, "alice")

	resp, err := client.PostForm(ts.Server.URL+routes.PostNew, url.Values{
		"title":   {""},
		"content": {"conteúdo sem título"},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Falha de validação re-renderiza o formulário, não redireciona.
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "conteúdo sem título") {
		t.Error("expected the form to keep the submitted content")
	}
}

func TestUpdateForbiddenForNonOwner(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.createUser(t, "alice", false)
	ts.createUser(t, "bob", false)
	post := ts.createPost(t, alice, "Post da alice")

	client := ts.newClient(t)
	ts.login(t, client, "bob")

	resp, err := client.PostForm(ts.Server.URL+routes.PostUpdate(post.ID), url.Values{
		"title":   {"Título adulterado"},
		"content": {"conteúdo adulterado"},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}

	unchanged, err := ts.Posts.Get(context.Background(), post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if unchanged.Title != "Post da alice" {
		t.Errorf("expected post to stay unchanged, got title %q", unchanged.Title)
	}
}

func TestOwnerUpdatesPost(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.createUser(t, "alice", false)
	post := ts.createPost(t, alice, "Título original")

	client := ts.newClient(t)
	ts.login(t, client, "alice")

	resp, err := client.PostForm(ts.Server.URL+routes.PostUpdate(post.ID), url.Values{
		"title":   {"Título revisado"},
		"content": {"conteúdo revisado"},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, resp.StatusCode)
	}

	updated, err := ts.Posts.Get(context.Background(), post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Título revisado" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}
}

func TestStaffDeletesForeignPost(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.createUser(t, "alice", false)
	ts.createUser(t, "mod", true)
	post := ts.createPost(t, alice, "Post a remover")

	client := ts.newClient(t)
	ts.login(t, client, "mod")

	resp, err := client.PostForm(ts.Server.URL+routes.PostDelete(post.ID), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != routes.Home {
		t.Errorf("expected redirect to %s, got %s", routes.Home, loc)
	}

	gone, err := ts.Server.Client().Get(ts.Server.URL + routes.PostDetail(post.ID))
	if err != nil {
		t.Fatal(err)
	}
	gone.Body.Close()
	if gone.StatusCode != http.StatusNotFound {
		t.Errorf("expected status %d after delete, got %d", http.StatusNotFound, gone.StatusCode)
	}
}

func TestRegisterAndDuplicateUsername(t *testing.T) {
	ts := setupTestServer(t)
	client := ts.newClient(t)

	form := url.Values{
		"username": {"carol"},
		"email":    {"carol@example.com"},
		"password": {testPassword},
	}

	resp, err := client.PostForm(ts.Server.URL+routes.Register, form)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, resp.StatusCode)
	}

	// Mesmo username de novo: re-renderiza com erro em vez de redirecionar.
	form.Set("email", "carol2@example.com")
	dup, err := ts.newClient(t).PostForm(ts.Server.URL+routes.Register, form)
	if err != nil {
		t.Fatal(err)
	}
	if dup.StatusCode != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, dup.StatusCode)
	}
	if body := readBody(t, dup); !strings.Contains(body, "já está em uso") {
		t.Error("expected duplicate username error message")
	}
}

func TestLogout(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "alice", false)

	client := ts.newClient(t)
	ts.login(t, client, "alice")

	resp, err := client.PostForm(ts.Server.URL+routes.Logout, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, resp.StatusCode)
	}

	// Depois do logout o formulário de novo post volta a exigir login.
	form, err := client.Get(ts.Server.URL + routes.PostNew)
	if err != nil {
		t.Fatal(err)
	}
	form.Body.Close()
	if form.StatusCode != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, form.StatusCode)
	}
}
