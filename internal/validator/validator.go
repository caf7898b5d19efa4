package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

const (
	maxPasswordLength = 128
	minPasswordLength = 8
	maxEmailLength    = 254
	maxUsernameLength = 30
	maxTitleLength    = 255
	maxContentLength  = 10000
)

func init() {
	validate = validator.New()
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func (r ValidationResult) Message() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, " ")
}

func Validate(s any) error {
	return validate.Struct(s)
}

// PostInput é o payload de criação/edição de post.
type PostInput struct {
	Title   string `validate:"required,max=255"`
	Content string `validate:"required,max=10000"`
}

func ValidatePost(title, content string) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []ValidationError{}}

	input := PostInput{
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
	}

	err := validate.Struct(input)
	if err == nil {
		return result
	}

	result.Valid = false
	for _, fe := range err.(validator.ValidationErrors) {
		switch fe.Field() {
		case "Title":
			if fe.Tag() == "required" {
				result.Errors = append(result.Errors, ValidationError{Field: "title", Message: "título é obrigatório"})
			} else {
				result.Errors = append(result.Errors, ValidationError{Field: "title", Message: fmt.Sprintf("título muito longo (máximo %d caracteres)", maxTitleLength)})
			}
		case "Content":
			if fe.Tag() == "required" {
				result.Errors = append(result.Errors, ValidationError{Field: "content", Message: "conteúdo é obrigatório"})
			} else {
				result.Errors = append(result.Errors, ValidationError{Field: "content", Message: fmt.Sprintf("conteúdo muito longo (máximo %d caracteres)", maxContentLength)})
			}
		}
	}

	return result
}

func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("nome de usuário é obrigatório")
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("nome de usuário muito longo (máximo %d caracteres)", maxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("nome de usuário deve conter apenas letras, números, _ ou -")
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email é obrigatório")
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("email muito longo (máximo %d caracteres)", maxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("formato de email inválido")
	}
	return nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("senha é obrigatória")
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("senha deve ter pelo menos %d caracteres", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("senha muito longa (máximo %d caracteres)", maxPasswordLength)
	}
	return nil
}

func ValidateRegistration(username, email, password string) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []ValidationError{}}

	if err := ValidateUsername(username); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{Field: "username", Message: err.Error()})
	}

	if err := ValidateEmail(email); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{Field: "email", Message: err.Error()})
	}

	if err := ValidatePassword(password); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{Field: "password", Message: err.Error()})
	}

	return result
}
