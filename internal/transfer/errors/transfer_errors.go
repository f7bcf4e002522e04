package transfererrors

import (
	"fmt"
	"net/http"
	"strings"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrTransferNotFound = apperror.New(
		apperror.CodeNotFound,
		"bank transfer batch not found",
		http.StatusNotFound,
	)
	ErrPeriodNotApproved = apperror.New(
		apperror.CodeInvalidState,
		"bank transfer can only be generated for an approved payroll period",
		http.StatusBadRequest,
	)
	ErrBatchAlreadyGenerated = apperror.New(
		apperror.CodeConflict,
		"an active bank transfer batch already exists for this period",
		http.StatusConflict,
	)
	ErrNoPayoutPayslips = apperror.New(
		apperror.CodeInvalidState,
		"no approved payslips to pay out for this period",
		http.StatusBadRequest,
	)
	ErrUnknownStatus = apperror.New(
		apperror.CodeInvalidInput,
		"unknown bank transfer status",
		http.StatusBadRequest,
	)
)

func InvalidTransition(from, to string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("illegal bank transfer transition from %s to %s", from, to),
		http.StatusBadRequest,
	)
}

// MissingBankDetails menyebut karyawan yang belum punya rekening supaya HR
// tahu siapa yang harus dilengkapi dahulu.
func MissingBankDetails(employeeCodes []string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("missing bank account details for: %s", strings.Join(employeeCodes, ", ")),
		http.StatusBadRequest,
	)
}
