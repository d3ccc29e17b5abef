package handler

import "github.com/posledger/backend/internal/interfaces/http/dto"

// APIResponse mirrors dto.Response with a typed Data field so the
// OpenAPI annotations can name the payload type per endpoint.
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}
