package middleware

import (
	"context"
	"net/http"

	"github.com/pbrandao/blogo/internal/contextkeys"
	"github.com/justinas/nosurf"
)

// InjectCSRF copia o token do nosurf para o contexto da requisição,
// de onde o renderer o lê para preencher os formulários. Precisa rodar
// por dentro do handler do nosurf, senão o token ainda não existe.
func InjectCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := nosurf.Token(r)
		ctx := context.WithValue(r.Context(), contextkeys.CSRFTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
