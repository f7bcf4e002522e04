package perioderrors

import (
	"fmt"
	"net/http"
	"strings"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll period not found",
		http.StatusNotFound,
	)
	ErrDuplicatePeriod = apperror.New(
		apperror.CodeConflict,
		"a payroll period already exists for this year and month",
		http.StatusConflict,
	)
	ErrInvalidPeriodMonth = apperror.New(
		apperror.CodeInvalidInput,
		"month must be between 1 and 12",
		http.StatusBadRequest,
	)
	ErrInvalidCutoffDate = apperror.New(
		apperror.CodeInvalidInput,
		"cutoff_date must be a valid date in YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrConcurrentProcessing = apperror.New(
		apperror.CodeConflict,
		"payroll period is being processed by another request, please retry",
		http.StatusConflict,
	)
	ErrNoEmployeesWithAttendance = apperror.New(
		apperror.CodeInvalidState,
		"no active employees with attendance data for this period",
		http.StatusBadRequest,
	)
)

// InvalidTransition menyebut transisi ilegalnya supaya pesan error bisa
// langsung dipakai operator.
func InvalidTransition(from, to string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("illegal payroll period transition from %s to %s", from, to),
		http.StatusBadRequest,
	)
}

// PayslipsNotCalculated mendaftar kode karyawan yang masih tertinggal.
func PayslipsNotCalculated(employeeCodes []string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("payslips not yet calculated for: %s", strings.Join(employeeCodes, ", ")),
		http.StatusBadRequest,
	)
}
