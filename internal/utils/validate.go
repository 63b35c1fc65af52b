package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names in messages
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("horse_sex", oneOf(models.SexMale, models.SexFemelle, models.SexHongre))
	_ = v.RegisterValidation("horse_etat", oneOf(models.EtatMalade, models.EtatSain, models.EtatEnRetablissement))
	_ = v.RegisterValidation("radiation_motif", oneOf(
		models.MotifMort, models.MotifEuthanasie, models.MotifCession, models.MotifVente, models.MotifAutre,
	))
	_ = v.RegisterValidation("prophylaxie_type", oneOf(models.ProphylaxieTypes...))

	return v
}

// oneOf builds a rule accepting the listed strings; the empty string is left to required
func oneOf(allowed ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		for _, a := range allowed {
			if s == a {
				return true
			}
		}
		return false
	}
}

// Validate runs the struct rules on value and flattens any failure into a 400 CustomError
func Validate[T any](value T) (T, error) {
	if err := validate.Struct(value); err != nil {
		return value, ValidationErrorToError(err)
	}
	return value, nil
}

// ValidationErrorToError flattens validator errors into one message
func ValidationErrorToError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.BadRequest("ValidationError", "%v", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s=%s'", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s'", fe.Field(), fe.Tag()))
		}
	}
	return types.BadRequest("ValidationError", "%s", strings.Join(msgs, "; "))
}

// BindJSON decodes the request body into T and validates it
func BindJSON[T any](c *fiber.Ctx) (T, error) {
	var value T
	if err := json.Unmarshal(c.Body(), &value); err != nil {
		return value, types.BadRequest("ValidationError", "invalid request body: %v", err)
	}
	return Validate(value)
}

// ParseID validates an identifier; malformed ids are rejected before any query
func ParseID(id, name string) (string, error) {
	if id == "" {
		return "", types.BadRequest("ValidationError", "%s is required", name)
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", types.BadRequest("ValidationError", "invalid %s %q", name, id)
	}
	return id, nil
}
