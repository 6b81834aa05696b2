package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/carelink/carelink-api/internal/model"
)

// RegisterCustomValidators wires domain validations into gin's binding
// engine. "timeofday" accepts "HH:MM" at minute granularity.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
			return model.ValidTimeOfDay(fl.Field().String())
		})
	}
}
