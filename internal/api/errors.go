package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/recipe-api/backend/internal/middleware"
	"github.com/pageza/recipe-api/backend/internal/service"
)

const (
	msgRequired = "This field is required."
	msgBlank    = "This field may not be blank."
	msgNotFound = "not found"
	msgNumber   = "A valid number is required."
)

// decimal.Decimal.UnmarshalJSON errors carry no field name; price is the only
// decimal in any request body.
const decimalDecodePrefix = "error decoding string"

// FieldErrors is the body of every 400 response: field name to messages.
// Problems not tied to one field go under "non_field_errors".
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func init() {
	// Report json names instead of Go field names in validation errors.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindJSON decodes and validates the request body into dst, writing a 400
// on failure. An empty body is treated as {}.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(dst)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, requestErrors(err))
		return false
	}
	return true
}

func requestErrors(err error) FieldErrors {
	errs := FieldErrors{}

	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			errs.Add(fieldPath(fe), validationMessage(fe))
		}
	case errors.As(err, &syntaxErr):
		errs.Add("non_field_errors", fmt.Sprintf("JSON parse error - %s", syntaxErr.Error()))
	case errors.As(err, &typeErr) && typeErr.Field != "":
		errs.Add(typeErr.Field, fmt.Sprintf("Incorrect type. Expected %s, but got %s.", typeErr.Type.Kind(), typeErr.Value))
	case strings.HasPrefix(err.Error(), decimalDecodePrefix):
		errs.Add("price", msgNumber)
	default:
		errs.Add("non_field_errors", err.Error())
	}
	return errs
}

// fieldPath drops the struct name from the validator namespace:
// "RecipeRequest.tags[0].name" becomes "tags[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}

func validationFailed(c *gin.Context, errs FieldErrors) bool {
	if len(errs) == 0 {
		return false
	}
	c.JSON(http.StatusBadRequest, errs)
	return true
}

// respondError maps service errors onto responses. Anything unrecognised is
// handed to the ErrorHandler middleware, which logs it and renders a 500.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// parseID reads the :id path parameter. Anything that is not a positive
// integer can never match a row, so it is answered with 404.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return 0, false
	}
	return uint(id), true
}

// currentUserID is the owner every service call is scoped to.
func currentUserID(c *gin.Context) (uint, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	}
	return id, ok
}

func isBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) == ""
}
