package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pbrandao/blogo/internal/config"
	"github.com/pbrandao/blogo/internal/db"
	"github.com/pbrandao/blogo/internal/logging"
	"github.com/pbrandao/blogo/internal/middleware"
	"github.com/pbrandao/blogo/internal/posts"
	"github.com/pbrandao/blogo/internal/routes"
	"github.com/pbrandao/blogo/internal/view"
	"github.com/alexedwards/scs/v2"
)

type HandlerDeps struct {
	Queries        *db.Queries // pool de leitura
	QueriesWrite   *db.Queries
	Posts          *posts.Service
	SessionManager *scs.SessionManager
	Config         *config.Config
	Renderer       *view.Renderer
	Markdown       *view.Markdown
}

// AppHandler é um tipo customizado que permite retornar erros dos handlers
type AppHandler func(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error

// Handle envolve nosso AppHandler para conformidade com http.HandlerFunc,
// mapeando a taxonomia de erros do domínio para o desfecho HTTP. Nenhum
// erro é re-tentado: toda falha encerra a requisição.
func Handle(deps HandlerDeps, h AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(deps, w, r)
		if err == nil {
			return
		}

		switch {
		case errors.Is(err, posts.ErrNotFound):
			_ = deps.renderError(w, r, http.StatusNotFound, "404", "A página que você procura não existe.")
		case errors.Is(err, posts.ErrUnauthorized):
			http.Redirect(w, r, routes.Login, http.StatusSeeOther)
		case errors.Is(err, posts.ErrForbidden):
			_ = deps.renderError(w, r, http.StatusForbidden, "403", "Você não tem permissão para modificar este post.")
		default:
			logging.Get().Error("request failed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}

func RegisterRoutes(mux *http.ServeMux, deps HandlerDeps) {
	// Leituras públicas
	mux.HandleFunc("GET /{$}", Handle(deps, handleHome))
	mux.HandleFunc("GET "+routes.About, Handle(deps, handleAbout))
	mux.HandleFunc("GET "+routes.UserPostsPattern, Handle(deps, handleUserPosts))
	mux.HandleFunc("GET "+routes.PostDetailPattern, Handle(deps, handlePostDetail))

	// Mutações de post. O formulário exige sessão; o POST em si é protegido
	// pela política no serviço, o RequireAuth só encurta o caminho.
	mux.Handle("GET "+routes.PostNew, middleware.RequireAuth(Handle(deps, handlePostNewForm)))
	mux.Handle("POST "+routes.PostNew, Handle(deps, handlePostCreate))
	mux.HandleFunc("GET "+routes.PostUpdatePattern, Handle(deps, handlePostUpdateForm))
	mux.HandleFunc("POST "+routes.PostUpdatePattern, Handle(deps, handlePostUpdate))
	mux.HandleFunc("POST "+routes.PostDeletePattern, Handle(deps, handlePostDelete))

	// Auth
	mux.HandleFunc("GET "+routes.Login, Handle(deps, handleLoginForm))
	mux.HandleFunc("POST "+routes.Login, Handle(deps, handleLogin))
	mux.HandleFunc("GET "+routes.Register, Handle(deps, handleRegisterForm))
	mux.HandleFunc("POST "+routes.Register, Handle(deps, handleRegister))
	mux.HandleFunc("POST "+routes.Logout, Handle(deps, handleLogout))
}

// render preenche os campos comuns do PageData (usuário corrente, flash,
// token CSRF) antes de delegar ao Renderer.
func (deps HandlerDeps) render(w http.ResponseWriter, r *http.Request, status int, page string, data *view.PageData) error {
	if data == nil {
		data = &view.PageData{}
	}
	data.Path = r.URL.Path
	if user, ok := middleware.GetUser(r.Context()); ok {
		data.CurrentUser = &user
	}
	if data.Flash == "" && deps.SessionManager != nil {
		data.Flash = deps.SessionManager.PopString(r.Context(), "flash")
	}
	data.CSRFToken = view.CSRFToken(r.Context())
	return deps.Renderer.Render(w, status, page, data)
}

func (deps HandlerDeps) renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) error {
	return deps.render(w, r, status, "error", &view.PageData{Title: title, Message: message})
}

func (deps HandlerDeps) flash(r *http.Request, message string) {
	if deps.SessionManager != nil {
		deps.SessionManager.Put(r.Context(), "flash", message)
	}
}
