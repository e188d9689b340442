package booking

import (
	"fmt"
	"strings"

	"mesero/pkg/logger"
	"mesero/pkg/model"

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
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// BookingValidator checks a packaged booking right before commit. A failure
// here means the conversation machine let an incomplete draft through, not
// bad customer input.
type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (bv *BookingValidator) ValidateBooking(booking *model.Booking) error {
	err := bv.validate.Struct(booking)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "booking", Message: err.Error()}}
	}

	var errs ValidationErrors
	for _, fieldErr := range validationErrs {
		errs = append(errs, ValidationError{
			Field:   fieldErr.Field(),
			Message: fmt.Sprintf("failed on %q validation", fieldErr.Tag()),
		})
	}
	return errs
}
