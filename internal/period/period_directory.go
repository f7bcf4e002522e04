package period

import (
	"context"
	"errors"

	perioderrors "go-payroll/internal/period/errors"
	"go-payroll/internal/payslip"

	"gorm.io/gorm"
)

type payslipDirectory struct {
	repo Repository
}

// NewPayslipDirectory memberi paket payslip akses read-only ke periode
// tanpa import cycle.
func NewPayslipDirectory(repo Repository) payslip.PeriodDirectory {
	return &payslipDirectory{repo: repo}
}

func (d *payslipDirectory) ViewByIDAndCompany(ctx context.Context, companyID, id string) (payslip.PeriodView, error) {
	period, err := d.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return payslip.PeriodView{}, perioderrors.ErrPeriodNotFound
		}
		return payslip.PeriodView{}, err
	}
	view := payslip.PeriodView{
		ID:             period.ID,
		Status:         period.Status,
		Year:           period.Year,
		Month:          period.Month,
		ProcessingDate: period.EndDate,
	}
	if period.ProcessingDate != nil {
		view.ProcessingDate = *period.ProcessingDate
	}
	return view, nil
}
