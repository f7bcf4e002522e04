package transfer

import (
	"bytes"
	"encoding/csv"

	"github.com/shopspring/decimal"
)

// LineItem adalah satu baris pembayaran di file bank.
type LineItem struct {
	EmployeeCode      string
	EmployeeName      string
	BankName          string
	BankAccountNumber string
	Amount            decimal.Decimal
	Reference         string
}

// BankFileFormatter memiliki layout byte file bank; isi kontennya tetap milik
// builder batch.
type BankFileFormatter interface {
	Format(batch *PayrollBankTransfer, items []LineItem) ([]byte, error)
	FormatName() string
	Extension() string
}

type csvFormatter struct{}

func NewCSVFormatter() BankFileFormatter {
	return csvFormatter{}
}

func (csvFormatter) FormatName() string { return "CSV" }

func (csvFormatter) Extension() string { return "csv" }

func (csvFormatter) Format(batch *PayrollBankTransfer, items []LineItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"batch_reference", "employee_code", "employee_name", "bank_name", "account_number", "amount", "payment_reference"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i := range items {
		record := []string{
			batch.BatchReference,
			items[i].EmployeeCode,
			items[i].EmployeeName,
			items[i].BankName,
			items[i].BankAccountNumber,
			items[i].Amount.StringFixed(2),
			items[i].Reference,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
