package connection_test

import (
	"testing"

	"go-payroll/internal/shared/connection"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestGormWithTx_StatementsRunOnCallerTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payroll_periods SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.Begin()
	assert.NoError(t, err)

	gdb := connection.GormWithTx(tx)
	assert.NoError(t, gdb.Exec("UPDATE payroll_periods SET status = ? WHERE id = ?", "PAID", "p-1").Error)

	// Statement di atas belum commit; rollback transaksi harus
	// membatalkannya tanpa ada query nyasar ke pool.
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
