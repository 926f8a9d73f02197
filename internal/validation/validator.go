// Package validation wraps go-playground/validator with field-keyed, human-readable messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// Messages maps "field.tag" (json field name, failing tag) to the message reported for it.
// A "field" key without a tag acts as the fallback for that field.
type Messages map[string]string

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		// bcryptlen bounds byte length, where min and max count runes.
		_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) <= MaxPasswordBytes
		})
		instance = v
	})
	return instance
}

// Struct validates s and returns one message per failing field, or nil when s is valid.
func Struct(s any, msgs Messages) (map[string]string, error) {
	err := engine().Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("validate %T: %w", s, err)
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(fe, msgs)
	}
	return out, nil
}

func message(fe validator.FieldError, msgs Messages) string {
	field := fe.Field()
	if m, ok := msgs[field+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := msgs[field]; ok {
		return m
	}
	return defaultMessage(fe)
}

func defaultMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "bcryptlen":
		return fmt.Sprintf("%s must be at most %d bytes", field, MaxPasswordBytes)
	case "eqfield":
		return field + " must match " + strings.ToLower(fe.Param())
	default:
		return field + " is invalid"
	}
}
