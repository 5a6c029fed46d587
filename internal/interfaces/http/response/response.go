package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/pkg/logger"
)

// RetryAfterSeconds is sent with retryable conflicts.
const RetryAfterSeconds = "1"

// Success sends {"message": message, ...payload}.
func Success(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error maps err onto the error taxonomy and writes it.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromError(err)

	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(requestContext(c), "request failed",
			zap.Error(err),
			zap.String("method", requestMethod(c)),
			zap.String("path", c.FullPath()),
		)
	}
	if appErr.Retryable {
		c.Header("Retry-After", RetryAfterSeconds)
	}

	body := gin.H{
		"error":   appErr.Category,
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	if appErr.Retryable {
		body["retryable"] = true
	}
	c.JSON(appErr.Status, body)
}

// Abort writes the error and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// BindError reports a request binding failure as a validation error.
func BindError(c *gin.Context, err error) {
	Error(c, ValidationFromBinding(err))
}

// ValidationFromBinding converts gin binding errors into per-field details.
func ValidationFromBinding(err error) *domainerrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]domainerrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, domainerrors.FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: fieldMessage(fe),
			})
		}
		return domainerrors.Validation("Validation failed", details...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domainerrors.Validation("Validation failed", domainerrors.FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be a %s", typeErr.Type.Kind()),
		})
	}

	return domainerrors.Validation("Invalid request body")
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// jsonFieldName reports fields by their JSON name in validation errors.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// fieldPath drops the root struct: "RegisterInput.paymentMethod.cardNumber"
// becomes "paymentMethod.cardNumber".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + lengthUnit(fe)
	case "max":
		return "must be at most " + fe.Param() + lengthUnit(fe)
	case "len":
		return "must be exactly " + fe.Param() + lengthUnit(fe)
	case "gt":
		return "must be greater than " + fe.Param()
	case "numeric":
		return "must contain digits only"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

func lengthUnit(fe validator.FieldError) string {
	switch fe.Kind().String() {
	case "string":
		return " characters"
	case "slice", "array", "map":
		return " items"
	}
	return ""
}

func requestContext(c *gin.Context) context.Context {
	if c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}

func requestMethod(c *gin.Context) string {
	if c.Request == nil {
		return ""
	}
	return c.Request.Method
}
