package models

import (
	"github.com/go-playground/validator/v10"
)

// modelValidate checks struct tags on catalog and settings types
var modelValidate *validator.Validate

func init() {
	modelValidate = validator.New()
	_ = modelValidate.RegisterValidation("paramname", validateParamName)
}

func validateParamName(fl validator.FieldLevel) bool {
	return ValidateParameterName(fl.Field().String()) == nil
}

// Validate checks the catalog's field rules and that parameter names are
// unique identifiers
func (c *Catalog) Validate() error {
	if err := ValidateParameterNames(c.Parameters); err != nil {
		return err
	}
	return modelValidate.Struct(c)
}

// Validate checks the settings' field rules
func (s *Settings) Validate() error {
	return modelValidate.Struct(s)
}
