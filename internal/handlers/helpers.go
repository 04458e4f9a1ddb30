package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/logger"
	"budgettracker/internal/middleware"
	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
	appvalidator "budgettracker/internal/validator"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error apperrors.AppError `json:"error"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, apperrors.ErrUnauthorized
	}
	id, ok := userID.(uint)
	if !ok || id == 0 {
		return 0, apperrors.ErrUnauthorized
	}
	return id, nil
}

// parsePathID parses a uint path parameter.
// Returns ErrInvalidInput if the parameter is not a valid positive integer.
func parsePathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid id")
	}
	return uint(id), nil
}

// bindJSON decodes and validates the request body, converting failures into
// an INVALID_INPUT error with per-field messages where possible.
func bindJSON(c *gin.Context, req interface{}) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.WithFields(apperrors.ErrInvalidInput, "Validation failed", appvalidator.Messages(verrs))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperrors.WithFields(apperrors.ErrInvalidInput, "Validation failed",
			map[string]string{typeErr.Field: "Expected " + typeErr.Type.String()})
	}

	if errors.Is(err, io.EOF) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Request body is required")
	}

	return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid request body: "+err.Error())
}

// invalidParam reports a malformed query parameter.
func invalidParam(name, message string) error {
	return apperrors.WithFields(apperrors.ErrInvalidInput, "Invalid query parameter "+name,
		map[string]string{name: message})
}

// bindPage parses the page and page_size query parameters.
func bindPage(c *gin.Context) (pagination.PageRequest, error) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return page, apperrors.WithFields(apperrors.ErrInvalidInput, "Invalid pagination", appvalidator.Messages(verrs))
		}
		return page, apperrors.WithMessage(apperrors.ErrInvalidInput, "page and page_size must be integers")
	}
	return page, nil
}

// queryInt parses an optional integer query parameter, ignoring surrounding whitespace.
func queryInt(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalidParam(name, "Must be an integer")
	}
	return &v, nil
}

// queryID parses an optional positive ID query parameter.
func queryID(c *gin.Context, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return nil, invalidParam(name, "Must be a positive integer")
	}
	id := uint(v)
	return &id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, name string) (*models.Date, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, invalidParam(name, "Must be a date in YYYY-MM-DD format")
	}
	return &d, nil
}

// queryDecimal parses an optional decimal query parameter.
func queryDecimal(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, invalidParam(name, "Must be a number")
	}
	return &d, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{"error": appErr})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{"error": apperrors.ErrInternalServer})
}
