package core

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxDateRangeDays is the inclusive upper bound on the day span of a
// report date range. Wider ranges fail validation; they are never clamped.
const MaxDateRangeDays = 90

// DateRangeInput bounds every balance/category/listing report.
type DateRangeInput struct {
	From time.Time `json:"from" validate:"required"`
	To   time.Time `json:"to" validate:"required"`
}

// HistoryInput selects a history series window. Month is zero-based.
type HistoryInput struct {
	TimeFrame TimeFrame `json:"timeFrame" validate:"required,timeframe"`
	Month     int       `json:"month" validate:"min=0,max=11"`
	Year      int       `json:"year" validate:"min=2000,max=3000"`
}

// TransactionInput is the payload for transaction creation. Amount is kept
// as a string so the cent-multiple rule can be checked exactly.
type TransactionInput struct {
	Amount      string          `json:"amount" validate:"required,amount"`
	Date        time.Time       `json:"date" validate:"required"`
	Type        TransactionType `json:"type" validate:"required,txtype"`
	Category    string          `json:"category" validate:"required"`
	Description string          `json:"description"`
}

// CategoryInput is the payload for category creation.
type CategoryInput struct {
	Name string          `json:"name" validate:"required,min=3,max=20"`
	Icon string          `json:"icon" validate:"max=20"`
	Type TransactionType `json:"type" validate:"required,txtype"`
}

// CurrencyInput is the payload for the currency update operation.
type CurrencyInput struct {
	Currency string `json:"currency" validate:"required,supported_currency"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Errors from custom rules are impossible: the registered names are
	// non-empty literals.
	_ = v.RegisterValidation("txtype", func(fl validator.FieldLevel) bool {
		return TransactionType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("timeframe", func(fl validator.FieldLevel) bool {
		return TimeFrame(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, err := ParseAmountToCents(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("supported_currency", func(fl validator.FieldLevel) bool {
		return IsSupportedCurrency(fl.Field().String())
	})
	return v
}

// ValidationError carries the human-readable description of the violated
// constraint, suitable for the failure envelope.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationFailed(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Validate checks the inclusive day span is within [0, MaxDateRangeDays].
func (in DateRangeInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return describeFieldErrors(err)
	}
	days := int(NormalizeDate(in.To).Sub(NormalizeDate(in.From)).Hours() / 24)
	if days < 0 {
		return validationFailed("invalid date range: to is before from")
	}
	if days > MaxDateRangeDays {
		return validationFailed("invalid date range: span exceeds %d days", MaxDateRangeDays)
	}
	return nil
}

func (in HistoryInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return describeFieldErrors(err)
	}
	return nil
}

func (in TransactionInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return describeFieldErrors(err)
	}
	return nil
}

func (in CategoryInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return describeFieldErrors(err)
	}
	return nil
}

func (in CurrencyInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return describeFieldErrors(err)
	}
	return nil
}

// describeFieldErrors converts validator errors into a single
// human-readable message describing the first violated constraint.
func describeFieldErrors(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return validationFailed("%s is required", fe.Field())
	case "min":
		if fe.Kind().String() == "string" {
			return validationFailed("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return validationFailed("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return validationFailed("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return validationFailed("%s must be at most %s", fe.Field(), fe.Param())
	case "txtype":
		return validationFailed("%s must be income or expense", fe.Field())
	case "timeframe":
		return validationFailed("%s must be year or month", fe.Field())
	case "amount":
		return validationFailed("%s must be a positive multiple of 0.01", fe.Field())
	case "supported_currency":
		return validationFailed("%s is not a supported currency", fe.Field())
	default:
		return validationFailed("%s is invalid", fe.Field())
	}
}
