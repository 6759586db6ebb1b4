package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"otabridge/shared/constant"
	"otabridge/shared/failure"
	"time"

	val "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *val.Validate

// calendarDate accepts strings in the YYYY-MM-DD form used by every stay and sync window.
func calendarDate(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := time.Parse(constant.CalendarFormat, str)

	return err == nil
}

// positiveAmount accepts decimal amounts strictly greater than zero.
func positiveAmount(field val.FieldLevel) bool {
	switch v := field.Field().Interface().(type) {
	case decimal.Decimal:
		return v.IsPositive()
	case string:
		amount, err := decimal.NewFromString(v)

		return err == nil && amount.IsPositive()
	default:
		return false
	}
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	err := validate.RegisterValidation("empty", func(fl val.FieldLevel) bool {
		return fl.Field().IsZero()
	})
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("calendardate", calendarDate)
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("positiveamount", positiveAmount)
	if err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	if err := Decode(r, data); err != nil {
		return err
	}

	return ValidateStruct(data)
}

// Decode reads a JSON body without validating it, for handlers whose service
// normalizes the request before validation.
func Decode[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
