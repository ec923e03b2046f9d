package validator

import (
	"errors"
	"fmt"
	"strings"

	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BarberValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBarberValidator(log *logger.Logger) *BarberValidator {
	log.Info("Barber validator initialized successfully")
	return &BarberValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *BarberValidator) ValidateCreate(req *model.CreateBarberRequest) error {
	return v.check(req)
}

func (v *BarberValidator) ValidateUpdate(update *model.BarberUpdate) error {
	if update.Bio == nil && update.Specialties == nil && update.Active == nil {
		return ValidationErrors{{Field: "BarberUpdate", Message: "at least one field must be provided"}}
	}
	return v.check(update)
}

func (v *BarberValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			if err.Kind().String() == "slice" {
				message = fmt.Sprintf("%s must contain at most %s items", err.Field(), err.Param())
			} else {
				message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
			}
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
