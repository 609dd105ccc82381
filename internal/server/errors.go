package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	"github.com/smallbiznis/polisa/internal/authorization"
	interceptdomain "github.com/smallbiznis/polisa/internal/intercept/domain"
	dbpkg "github.com/smallbiznis/polisa/pkg/db"
	"github.com/smallbiznis/polisa/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, dataResponse{Success: true, Data: data})
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, failure("internal_error", "internal server error")
	}

	if v, ok := interceptdomain.AsViolation(err); ok {
		return http.StatusBadRequest, failure(v.Code(), v.Message)
	}

	if vErr := asValidationErrors(err); vErr != nil {
		resp := failure("validation_error", vErr.Errors[0].Message)
		resp.Errors = vErr.Errors
		return http.StatusBadRequest, resp
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorResponse{
			Error:   code,
			Message: validationErrorMessage(code),
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authorization.ErrUnauthorized):
		return http.StatusUnauthorized, failure("unauthorized", "unauthorized")
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, failure("forbidden", "forbidden")
	case isConflictError(err):
		code := "conflict"
		if !errors.Is(err, ErrConflict) && !dbpkg.IsDuplicateKeyErr(err) {
			code = err.Error()
		}
		return http.StatusConflict, failure(code, strings.ReplaceAll(code, "_", " "))
	case isNotFoundError(err):
		code := "not_found"
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, gorm.ErrRecordNotFound) {
			code = err.Error()
		}
		return http.StatusNotFound, failure(code, strings.ReplaceAll(code, "_", " "))
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, failure("rate_limited", "too many requests")
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, appdomain.ErrLockUnavailable),
		errors.Is(err, appdomain.ErrRendererUnavailable):
		return http.StatusServiceUnavailable, failure("service_unavailable", "service unavailable")
	default:
		return http.StatusInternalServerError, failure("internal_error", "internal server error")
	}
}

func failure(code, message string) errorResponse {
	return errorResponse{Error: code, Message: message}
}

// classifyErrorForLog tags request logs with the same code clients see.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status == http.StatusBadRequest:
		if _, ok := interceptdomain.AsViolation(err); ok {
			return "interception", payload.Error
		}
		return "validation", payload.Error
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return "auth", payload.Error
	case status == http.StatusNotFound:
		return "not_found", payload.Error
	case status == http.StatusConflict:
		return "conflict", payload.Error
	case status == http.StatusTooManyRequests, status == http.StatusServiceUnavailable:
		return "throttled", payload.Error
	default:
		return "internal", payload.Error
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil && len(vErr.Errors) > 0 {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, pagination.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	case isInsurerValidationError(err),
		isProductValidationError(err),
		isClauseValidationError(err),
		isLiabilityValidationError(err),
		isPlanValidationError(err),
		isRateValidationError(err),
		isPremiumValidationError(err),
		isInterceptValidationError(err),
		isApplicationValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		isCatalogConflictError(err),
		errors.Is(err, appdomain.ErrSubmissionInProgress),
		errors.Is(err, appdomain.ErrInvalidTransition),
		dbpkg.IsDuplicateKeyErr(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		isCatalogNotFoundError(err),
		isPremiumNotFoundError(err),
		errors.Is(err, interceptdomain.ErrProductNotFound),
		errors.Is(err, appdomain.ErrNotFound),
		errors.Is(err, appdomain.ErrProductNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	for _, suffix := range []string{"_required", "_out_of_range", "_not_allowed"} {
		if strings.HasSuffix(code, suffix) {
			return strings.TrimSuffix(code, suffix)
		}
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasPrefix(code, "duplicate_") {
		return strings.TrimPrefix(code, "duplicate_")
	}
	return "request"
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	}
	field := strings.ReplaceAll(validationErrorField(code), "_", " ")
	switch {
	case strings.HasSuffix(code, "_required"):
		return field + " is required"
	case strings.HasPrefix(code, "duplicate_"):
		return "duplicate " + field
	case strings.HasPrefix(code, "invalid_"):
		return "invalid " + field
	default:
		return strings.ReplaceAll(code, "_", " ")
	}
}
