package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pbrandao/blogo/internal/db"
	"github.com/pbrandao/blogo/internal/logging"
	"github.com/pbrandao/blogo/internal/routes"
	"github.com/pbrandao/blogo/internal/validator"
	"github.com/pbrandao/blogo/internal/view"
	"golang.org/x/crypto/bcrypt"
)

func handleRegisterForm(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	return deps.render(w, r, http.StatusOK, "register", &view.PageData{
		Title:    "Registrar",
		FormData: map[string]string{},
	})
}

func handleRegister(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")

	logging.AddToEvent(r.Context(),
		slog.String("operation", "register"),
		slog.String("username", username),
	)

	formData := map[string]string{"username": username, "email": email}
	registerPage := func(errMsg string) error {
		return deps.render(w, r, http.StatusOK, "register", &view.PageData{
			Title:     "Registrar",
			FormError: errMsg,
			FormData:  formData,
		})
	}

	validation := validator.ValidateRegistration(username, email, password)
	if !validation.Valid {
		return registerPage(validation.Message())
	}

	if _, err := deps.Queries.GetUserByUsername(r.Context(), username); err == nil {
		logging.AddToEvent(r.Context(),
			slog.String("outcome", "error"),
			slog.String("error_reason", "username_already_exists"),
		)
		return registerPage("Este nome de usuário já está em uso")
	}
	if _, err := deps.Queries.GetUserByEmail(r.Context(), email); err == nil {
		logging.AddToEvent(r.Context(),
			slog.String("outcome", "error"),
			slog.String("error_reason", "email_already_exists"),
		)
		return registerPage("Este e-mail já está em uso")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := deps.QueriesWrite.CreateUser(r.Context(), db.CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsStaff:      false,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logging.AddToEvent(r.Context(),
		slog.String("outcome", "success"),
		slog.Int64("created_user_id", user.ID),
	)

	deps.SessionManager.Put(r.Context(), "user_id", user.ID)
	deps.flash(r, "Conta criada com sucesso!")
	http.Redirect(w, r, routes.Home, http.StatusSeeOther)
	return nil
}

func handleLoginForm(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	return deps.render(w, r, http.StatusOK, "login", &view.PageData{
		Title:    "Entrar",
		FormData: map[string]string{},
	})
}

func handleLogin(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	username := r.FormValue("username")
	password := r.FormValue("password")

	logging.AddToEvent(r.Context(),
		slog.String("operation", "login"),
		slog.String("username", username),
	)

	loginPage := func(errMsg string) error {
		return deps.render(w, r, http.StatusOK, "login", &view.PageData{
			Title:     "Entrar",
			FormError: errMsg,
			FormData:  map[string]string{"username": username},
		})
	}

	if username == "" || password == "" {
		logging.AddToEvent(r.Context(),
			slog.String("outcome", "error"),
			slog.String("error_reason", "missing_credentials"),
		)
		return loginPage("Nome de usuário e senha são obrigatórios")
	}

	user, err := deps.Queries.GetUserByUsername(r.Context(), username)
	if err != nil {
		logging.AddToEvent(r.Context(),
			slog.String("outcome", "error"),
			slog.String("error_reason", "user_not_found"),
		)
		return loginPage("Usuário ou senha inválidos")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logging.AddToEvent(r.Context(),
			slog.String("outcome", "error"),
			slog.String("error_reason", "invalid_password"),
			slog.Int64("user_id", user.ID),
		)
		return loginPage("Usuário ou senha inválidos")
	}

	logging.AddToEvent(r.Context(),
		slog.String("outcome", "success"),
		slog.Int64("user_id", user.ID),
		slog.Bool("is_staff", user.IsStaff),
	)

	// Sessão nova após elevação de privilégio
	if err := deps.SessionManager.RenewToken(r.Context()); err != nil {
		return fmt.Errorf("failed to renew session token: %w", err)
	}
	deps.SessionManager.Put(r.Context(), "user_id", user.ID)
	http.Redirect(w, r, routes.Home, http.StatusSeeOther)
	return nil
}

func handleLogout(deps HandlerDeps, w http.ResponseWriter, r *http.Request) error {
	if err := deps.SessionManager.Destroy(r.Context()); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	http.Redirect(w, r, routes.Home, http.StatusSeeOther)
	return nil
}
