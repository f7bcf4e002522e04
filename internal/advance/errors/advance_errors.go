package advanceerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrAdvanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"salary advance not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found for this company",
		http.StatusNotFound,
	)
	ErrInvalidAdvanceType = apperror.New(
		apperror.CodeInvalidInput,
		"advance_type must be one of SALARY, EMERGENCY, PURCHASE, MEDICAL",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"advance amount must be positive",
		http.StatusBadRequest,
	)
	ErrInvalidInstallments = apperror.New(
		apperror.CodeInvalidInput,
		"installments must be at least 1",
		http.StatusBadRequest,
	)
	ErrAmountExceedsLimit = apperror.New(
		apperror.CodeInvalidInput,
		"advance amount exceeds the allowed percentage of basic salary",
		http.StatusBadRequest,
	)
	ErrAnnualLimitReached = apperror.New(
		apperror.CodeInvalidInput,
		"employee has reached the advance limit for this year",
		http.StatusBadRequest,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid salary advance status transition",
		http.StatusBadRequest,
	)
	ErrConcurrencyConflict = apperror.New(
		apperror.CodeConflict,
		"salary advance was modified concurrently, please retry",
		http.StatusConflict,
	)
)
