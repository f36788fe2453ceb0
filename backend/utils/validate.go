package utils

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
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

// Validate checks the `validate` tags of a request body and returns field -> rule
// for every violation, or nil when the value is valid.
func Validate(v interface{}) map[string]string {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[fe.Field()] = rule
	}
	return out
}

// ParseBody decodes and validates the request body, writing a 400 response
// itself when the body is unusable. ok is false when the handler must stop.
func ParseBody(c *fiber.Ctx, out interface{}) (ok bool, err error) {
	if err := c.BodyParser(out); err != nil {
		return false, BadRequest(c, "Cannot parse JSON")
	}
	if errs := Validate(out); errs != nil {
		return false, ValidationError(c, errs)
	}
	return true, nil
}

// ParamID parses a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
