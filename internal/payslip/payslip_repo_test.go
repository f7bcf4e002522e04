package payslip_test

import (
	"context"
	"testing"

	"go-payroll/internal/payslip"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// Repo hasil WithTx harus menjalankan query di koneksi transaksi pemanggil,
// bukan di pool, supaya perubahan payslip commit/rollback bareng outbox.
func TestPayslipRepository_WithTxUsesCallerTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	companyID := uuid.NewString()
	periodID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payslips" SET`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectRollback()

	tx, err := db.Begin()
	assert.NoError(t, err)

	repo := payslip.NewRepository(nil)
	flipped, err := repo.WithTx(tx).UpdateStatusByPeriod(
		context.Background(), companyID, periodID, "CALCULATED", "APPROVED", nil,
	)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, flipped)

	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
