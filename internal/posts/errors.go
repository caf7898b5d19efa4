package posts

import (
	"errors"

	"github.com/pbrandao/blogo/internal/validator"
)

var (
	// ErrNotFound cobre post ou autor inexistente.
	ErrNotFound = errors.New("post não encontrado")
	// ErrForbidden: autenticado, mas sem ser dono nem staff.
	ErrForbidden = errors.New("sem permissão para modificar este post")
	// ErrUnauthorized: ação restrita tentada por anônimo.
	ErrUnauthorized = errors.New("autenticação necessária")
)

// ValidationError carrega os erros de campo para re-renderizar o formulário.
type ValidationError struct {
	Result validator.ValidationResult
}

func (e *ValidationError) Error() string {
	return e.Result.Message()
}

func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
