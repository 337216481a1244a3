package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/dto/response"
	"github.com/sangkips/agrishop-billing/pkg/apperror"
)

// dateLayout is the format of date query parameters
const dateLayout = "2006-01-02"

// GetUUIDParam parses the named path parameter. On failure it writes a 400
// and returns false.
func GetUUIDParam(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+resource+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// ParseDate parses a YYYY-MM-DD value in loc. An empty value yields nil.
func ParseDate(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return nil, fmt.Errorf("must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}

// UseJSONFieldNames makes validation errors name fields by their JSON key
func UseJSONFieldNames() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			}
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	}
}

// BindError converts a binding failure into a response
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, len(verrs))
		for i, fe := range verrs {
			fields[i] = apperror.FieldError{
				Field:   fe.Field(),
				Message: validationMessage(fe),
			}
		}
		response.ValidationError(c, fields)
		return
	}
	response.BadRequest(c, "Invalid request body")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid":
		return "must be a valid UUID"
	default:
		return "is invalid"
	}
}

// invalidField writes a validation error for a single query or body field
func invalidField(c *gin.Context, field, message string) {
	response.ValidationError(c, []apperror.FieldError{{Field: field, Message: message}})
}
