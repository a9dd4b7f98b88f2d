package service

import (
	"errors"

	"github.com/raphaelgruber/contentpilot/internal/models"
)

// ErrValidation matches every local, pre-dispatch rejection.
var ErrValidation = errors.New("invalid submission")

// Validation errors. Each matches ErrValidation under errors.Is.
var (
	ErrImageRequired = validationError("an image is required on the first standard-mode turn")
	ErrPromptEmpty   = validationError("prompt is empty")
	ErrPromptTooLong = validationError("prompt is too long")
	ErrImageTooLarge = validationError("image is too large")
	ErrImageType     = validationError("unsupported image type")
)

var (
	// ErrAdapter matches every model adapter failure.
	ErrAdapter = errors.New("model adapter failed")

	// ErrTurnInFlight rejects a submission while the session is Requesting.
	ErrTurnInFlight = errors.New("a turn is already in flight")

	// ErrTurnAbandoned reports a turn whose context ended before the reply was committed.
	ErrTurnAbandoned = errors.New("turn abandoned")

	// ErrNoStructuredContent is returned when saving a message without a payload.
	ErrNoStructuredContent = errors.New("message has no structured content")

	ErrSessionNotFound = errors.New("session not found")
	ErrMessageNotFound = errors.New("message not found")
)

type validationError string

func (e validationError) Error() string { return string(e) }

func (e validationError) Is(target error) bool { return target == ErrValidation }

// AdapterError carries the adapter's own error so it can be shown verbatim.
type AdapterError struct {
	Err error
}

func (e *AdapterError) Error() string { return e.Err.Error() }

func (e *AdapterError) Unwrap() error { return e.Err }

func (e *AdapterError) Is(target error) bool { return target == ErrAdapter }

// UserMessage renders the single human readable message for a failed turn.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var adapterErr *AdapterError
	switch {
	case errors.As(err, &adapterErr):
		return adapterErr.Err.Error()
	case errors.Is(err, ErrImageRequired):
		return "Envie uma foto do produto para gerar o conteúdo."
	case errors.Is(err, ErrPromptEmpty):
		return "Digite uma mensagem."
	case errors.Is(err, ErrPromptTooLong):
		return "A mensagem é longa demais."
	case errors.Is(err, ErrImageTooLarge):
		return "A imagem excede o tamanho máximo permitido."
	case errors.Is(err, ErrImageType):
		return "Formato de imagem não suportado. Use JPEG, PNG, WEBP ou GIF."
	case errors.Is(err, models.ErrUnknownMode):
		return "Modo desconhecido."
	case errors.Is(err, models.ErrUnknownPlatform):
		return "Plataforma desconhecida."
	case errors.Is(err, ErrTurnInFlight):
		return "Aguarde a resposta anterior."
	case errors.Is(err, ErrTurnAbandoned):
		return "A solicitação foi cancelada."
	default:
		return err.Error()
	}
}
