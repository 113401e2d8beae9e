package common

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"
)

// Error codes carried by classified errors. They double as the "code" field
// of the error envelope.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeMalformedRequest = "MALFORMED_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeConflict         = "CONFLICT"
	CodeNotFound         = "NOT_FOUND"
	CodeTooManyRequests  = "TOO_MANY_REQUESTS"
	CodeInternal         = "INTERNAL_ERROR"
)

// InternalErrorMessage is the only message callers ever see for internal errors.
const InternalErrorMessage = "Internal server error, please try later"

type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindConflict
	KindNotFound
	KindTooManyRequests
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

func ValidationError(message string) error {
	return oops.Code(CodeValidation).Errorf("%s", message)
}

// MalformedRequestError is a validation error for a structurally defective
// request, reported with its own code and status.
func MalformedRequestError(message string) error {
	return oops.Code(CodeMalformedRequest).Errorf("%s", message)
}

func UnauthorizedError(message string) error {
	return oops.Code(CodeUnauthorized).Errorf("%s", message)
}

func ForbiddenError(message string) error {
	return oops.Code(CodeForbidden).Errorf("%s", message)
}

func ConflictError(message string) error {
	return oops.Code(CodeConflict).Errorf("%s", message)
}

func NotFoundError(message string) error {
	return oops.Code(CodeNotFound).Errorf("%s", message)
}

func TooManyRequestsError(message string) error {
	return oops.Code(CodeTooManyRequests).Errorf("%s", message)
}

// InternalError wraps a store or crypto failure. The wrapped detail is kept
// for logs and never rendered.
func InternalError(operation string, err error) error {
	if err == nil {
		err = errors.New(operation + " failed")
	}
	return oops.Code(CodeInternal).With("operation", operation).Wrap(err)
}

func codeOf(err error) (string, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "", false
	}
	switch oopsErr.Code() {
	case CodeValidation:
		return CodeValidation, true
	case CodeMalformedRequest:
		return CodeMalformedRequest, true
	case CodeUnauthorized:
		return CodeUnauthorized, true
	case CodeForbidden:
		return CodeForbidden, true
	case CodeConflict:
		return CodeConflict, true
	case CodeNotFound:
		return CodeNotFound, true
	case CodeTooManyRequests:
		return CodeTooManyRequests, true
	}
	return "", false
}

// KindOf classifies err. Anything that is not a classified error is internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	code, ok := codeOf(err)
	if !ok {
		return KindInternal
	}
	switch code {
	case CodeValidation, CodeMalformedRequest:
		return KindValidation
	case CodeUnauthorized:
		return KindUnauthorized
	case CodeForbidden:
		return KindForbidden
	case CodeConflict:
		return KindConflict
	case CodeNotFound:
		return KindNotFound
	case CodeTooManyRequests:
		return KindTooManyRequests
	}
	return KindInternal
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

var statusByCode = map[string]int{
	CodeValidation:       http.StatusBadRequest,
	CodeMalformedRequest: http.StatusUnprocessableEntity,
	CodeUnauthorized:     http.StatusUnauthorized,
	CodeForbidden:        http.StatusForbidden,
	CodeConflict:         http.StatusConflict,
	CodeNotFound:         http.StatusNotFound,
	CodeTooManyRequests:  http.StatusTooManyRequests,
	CodeInternal:         http.StatusInternalServerError,
}

// StatusOf returns the HTTP status, envelope code and caller-visible message for err.
func StatusOf(err error) (int, string, string) {
	if code, ok := codeOf(err); ok {
		return statusByCode[code], code, err.Error()
	}
	return http.StatusInternalServerError, CodeInternal, InternalErrorMessage
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

func codeForStatus(status int) string {
	for code, s := range statusByCode {
		if s == status && code != CodeMalformedRequest {
			return code
		}
	}
	switch {
	case status == http.StatusNotImplemented:
		return "NOT_IMPLEMENTED"
	case status >= http.StatusInternalServerError:
		return CodeInternal
	}
	return "CLIENT_ERROR"
}

// HTTPErrorHandler renders every error returned by a handler or middleware
// as the standard envelope. It is the only place error kinds are flattened.
func HTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status  int
			code    string
			message string
		)

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			code = codeForStatus(status)
			message = http.StatusText(status)
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		} else {
			status, code, message = StatusOf(err)
		}

		if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
			message = InternalErrorMessage
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, CreateErrorResponse(code, message, nil))
		}
		if writeErr != nil {
			logger.Error("failed to write error response", "error", writeErr)
		}
	}
}
