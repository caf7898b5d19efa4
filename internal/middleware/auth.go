package middleware

import (
	"context"
	"net/http"

	"github.com/pbrandao/blogo/internal/contextkeys"
	"github.com/pbrandao/blogo/internal/db"
	"github.com/pbrandao/blogo/internal/identity"
	"github.com/pbrandao/blogo/internal/routes"
	"github.com/alexedwards/scs/v2"
)

// LoadIdentity resolve a sessão para um db.User e o coloca no contexto de
// toda requisição. Sem sessão válida a requisição segue como anônima —
// leituras são públicas, então não redirecionamos aqui.
func LoadIdentity(sm *scs.SessionManager, queries *db.Queries, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := sm.GetInt64(r.Context(), "user_id")
		if userID == 0 {
			next.ServeHTTP(w, r)
			return
		}

		user, err := queries.GetUserByID(r.Context(), userID)
		if err != nil {
			// Sessão aponta para usuário removido; descarta.
			_ = sm.Destroy(r.Context())
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextkeys.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth protege rotas de mutação: anônimo é mandado para o login.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			redirectLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func redirectLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", routes.Login)
	} else {
		http.Redirect(w, r, routes.Login, http.StatusSeeOther)
	}
}

// GetUser recupera o usuário do contexto de forma segura
func GetUser(ctx context.Context) (db.User, bool) {
	user, ok := ctx.Value(contextkeys.UserContextKey).(db.User)
	return user, ok
}

// CurrentIdentity converte o usuário do contexto na identidade usada pela
// política. Contexto sem usuário vira o anônimo.
func CurrentIdentity(ctx context.Context) identity.Identity {
	user, ok := GetUser(ctx)
	if !ok {
		return identity.Anonymous()
	}
	return identity.Identity{
		UserID:        user.ID,
		Username:      user.Username,
		IsStaff:       user.IsStaff,
		Authenticated: true,
	}
}
