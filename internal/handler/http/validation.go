package http

import (
	playground "github.com/go-playground/validator/v10"

	"github.com/propconnect/propconnect/internal/domain"
	"github.com/propconnect/propconnect/pkg/validator"
)

// phoneTag validates Tunisian mobile numbers on request DTOs.
const phoneTag = "tnphone"

func init() {
	if err := validator.RegisterValidation(phoneTag, func(fl playground.FieldLevel) bool {
		return domain.IsValidPhone(domain.NormalizePhone(fl.Field().String()))
	}); err != nil {
		panic(err)
	}
	validator.RegisterMessage(phoneTag, "must be +216 followed by 8 digits")
}
