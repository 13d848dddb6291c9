package handler

import (
	"freightdesk/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding rules used by request DTOs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return model.IsOrderStatus(fl.Field().String())
	})
}
