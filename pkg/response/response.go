package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error codes returned in the error envelope. Clients match on these
// instead of parsing message text.
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeConflict          = "CONFLICT"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeAlreadyTerminal   = "ALREADY_TERMINAL"
	CodeModuleDisabled    = "MODULE_DISABLED"
	CodeInternal          = "INTERNAL"
)

type envelope struct {
	Data any `json:"data"`
}

type collectionEnvelope struct {
	Data any            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type PaginationMeta struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
}

func JSON(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, envelope{Data: data})
}

func Created(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, envelope{Data: data})
}

func Collection(c echo.Context, data any, meta PaginationMeta) error {
	return c.JSON(http.StatusOK, collectionEnvelope{Data: data, Meta: meta})
}

func Error(c echo.Context, status int, code, message string, details any) error {
	return c.JSON(status, errorEnvelope{Error: errorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}
