package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/posledger/backend/internal/interfaces/http/dto"
)

// SetupValidator makes validator errors report fields by their json
// (or form) tag instead of the Go struct field name. Call once before
// building the engine.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			name, _, _ = strings.Cut(fld.Tag.Get("form"), ",")
		}
		return name
	})
}

// FormatValidationErrors turns a binding failure into the API's
// field-by-field validation response.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			details = append(details, dto.ValidationDetail{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
			})
		}
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 with per-field detail.
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "uuid":
		return "Must be a valid UUID"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	case "min":
		if fe.Type().Kind() == reflect.String {
			return "Must be at least " + fe.Param() + " characters"
		}
		return "Must be at least " + fe.Param()
	case "max":
		if fe.Type().Kind() == reflect.String {
			return "Must be at most " + fe.Param() + " characters"
		}
		return "Must be at most " + fe.Param()
	case "email":
		return "Must be a valid email address"
	default:
		return "Invalid value"
	}
}
