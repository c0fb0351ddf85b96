package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	bomdomain "github.com/sahajbiz/voucherd/internal/bom/domain"
	catalogdomain "github.com/sahajbiz/voucherd/internal/catalog/domain"
	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
	voucherdomain "github.com/sahajbiz/voucherd/internal/voucher/domain"
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

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
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
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
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

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
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
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, catalogdomain.ErrInvalidOrganization),
		errors.Is(err, catalogdomain.ErrInvalidCode),
		errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidUnitPrice),
		errors.Is(err, catalogdomain.ErrInvalidReorderLevel):
		return true
	case errors.Is(err, stockdomain.ErrInvalidOrganization),
		errors.Is(err, stockdomain.ErrInvalidProduct),
		errors.Is(err, stockdomain.ErrInvalidWarehouse),
		errors.Is(err, stockdomain.ErrInvalidQuantity):
		return true
	case errors.Is(err, taxdomain.ErrInvalidOrganization),
		errors.Is(err, taxdomain.ErrInvalidGSTIN),
		errors.Is(err, taxdomain.ErrInvalidStateCode),
		errors.Is(err, taxdomain.ErrInvalidSlab):
		return true
	case errors.Is(err, voucherdomain.ErrInvalidOrganization),
		errors.Is(err, voucherdomain.ErrInvalidID),
		errors.Is(err, voucherdomain.ErrInvalidType),
		errors.Is(err, voucherdomain.ErrInvalidSupplyType),
		errors.Is(err, voucherdomain.ErrInvalidQuantity),
		errors.Is(err, voucherdomain.ErrInvalidUnitPrice),
		errors.Is(err, voucherdomain.ErrInvalidDiscount),
		errors.Is(err, voucherdomain.ErrMissingProduct):
		return true
	case errors.Is(err, bomdomain.ErrInvalidOrganization),
		errors.Is(err, bomdomain.ErrInvalidProduct),
		errors.Is(err, bomdomain.ErrInvalidComponent),
		errors.Is(err, bomdomain.ErrInvalidQuantity),
		errors.Is(err, bomdomain.ErrInvalidWastage):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, catalogdomain.ErrDuplicateCode),
		errors.Is(err, bomdomain.ErrDuplicateBOM),
		errors.Is(err, voucherdomain.ErrVoucherFinalized):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, stockdomain.ErrNotFound),
		errors.Is(err, taxdomain.ErrNotFound),
		errors.Is(err, voucherdomain.ErrNotFound),
		errors.Is(err, voucherdomain.ErrLineNotFound),
		errors.Is(err, bomdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasPrefix(code, "missing_") {
		return strings.TrimPrefix(code, "missing_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
