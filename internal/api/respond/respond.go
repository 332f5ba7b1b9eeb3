package respond

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	}
}

// Error writes the failure envelope.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": true, "message": message})
}

// ErrorWith writes the failure envelope plus extra keys.
func ErrorWith(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{"error": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": true, "message": message})
}

// Success writes {error: false, message, data}.
func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"error": false, "message": message, "data": data})
}

// FieldError reports a single invalid field.
func FieldError(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   true,
		"message": "Invalid input data",
		"errors":  gin.H{field: []string{message}},
	})
}

// ValidationError turns a binding error into field-level messages.
func ValidationError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		Error(c, http.StatusBadRequest, "Malformed request body")
		return
	}

	fields := gin.H{}
	for _, fe := range verrs {
		fields[fe.Field()] = []string{messageFor(fe)}
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   true,
		"message": "Invalid input data",
		"errors":  fields,
	})
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is at least %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value is at most %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "len":
		return fmt.Sprintf("Ensure this field has %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}
