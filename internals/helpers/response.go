// file: internals/helpers/response.go
package helper

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator bersama; nama field di error mengikuti tag json.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ErrBadJSON: body tidak bisa di-parse.
var ErrBadJSON = errors.New("invalid json body")

// BindAndValidate: BodyParser + validator. JSON rusak → ErrBadJSON,
// gagal validasi → validator.ValidationErrors.
func BindAndValidate(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return ErrBadJSON
	}
	return Validator().Struct(out)
}

// ValidationErrorMap: validator.ValidationErrors → { field: [pesan] }.
func ValidationErrorMap(err error) (map[string][]string, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		out[field] = append(out[field], tagMessage(fe))
	}
	return out, true
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "uuid", "uuid4":
		return "must be a valid uuid"
	case "dive":
		return "invalid item"
	}
	return "failed on " + fe.Tag()
}
