package paysliperrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrPayslipNotFound = apperror.New(
		apperror.CodeNotFound,
		"payslip not found",
		http.StatusNotFound,
	)
	ErrPeriodNotProcessable = apperror.New(
		apperror.CodeInvalidState,
		"payslips can only be calculated while the period is PROCESSING or COMPLETED",
		http.StatusBadRequest,
	)
	ErrPayslipImmutable = apperror.New(
		apperror.CodeInvalidState,
		"approved or paid payslips cannot be recalculated",
		http.StatusBadRequest,
	)
	ErrAttendanceMissing = apperror.New(
		apperror.CodeInvalidInput,
		"attendance data is missing for this employee and period",
		http.StatusBadRequest,
	)
	ErrEmployeeInactive = apperror.New(
		apperror.CodeInvalidInput,
		"employee is not active for this company",
		http.StatusBadRequest,
	)
	ErrPayslipNotCalculated = apperror.New(
		apperror.CodeInvalidState,
		"payslip has not been calculated yet",
		http.StatusBadRequest,
	)
)
