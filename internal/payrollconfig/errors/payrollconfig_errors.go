package configerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrConfigNotFound = apperror.New(
		apperror.CodeNotFound,
		"no active payroll configuration matches the requested key and scope",
		http.StatusNotFound,
	)
	ErrConfigTypeError = apperror.New(
		apperror.CodeInvalidInput,
		"payroll configuration value cannot be coerced to its declared type",
		http.StatusUnprocessableEntity,
	)
	ErrConfigAmbiguous = apperror.New(
		apperror.CodeConflict,
		"multiple payroll configurations are active for the same key and scope",
		http.StatusConflict,
	)
	ErrInvalidValueType = apperror.New(
		apperror.CodeInvalidInput,
		"value_type must be one of DECIMAL, INTEGER, PERCENTAGE, BOOLEAN, TEXT, JSON",
		http.StatusBadRequest,
	)
	ErrInvalidConfigType = apperror.New(
		apperror.CodeInvalidInput,
		"configuration_type must be one of SALARY, ALLOWANCE, DEDUCTION, TAX, BONUS, PENALTY",
		http.StatusBadRequest,
	)
	ErrInvalidEffectiveRange = apperror.New(
		apperror.CodeInvalidInput,
		"effective_from must be before or equal effective_to",
		http.StatusBadRequest,
	)
	ErrConfigNotFoundByID = apperror.New(
		apperror.CodeNotFound,
		"payroll configuration not found",
		http.StatusNotFound,
	)
)
