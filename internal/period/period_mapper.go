package period

import "time"

func mapToResponse(period *PayrollPeriod) PeriodResponse {
	resp := PeriodResponse{
		ID:         period.ID.String(),
		Year:       period.Year,
		Month:      period.Month,
		PeriodName: period.PeriodName,
		Status:     period.Status,

		StartDate:  period.StartDate.Format("2006-01-02"),
		EndDate:    period.EndDate.Format("2006-01-02"),
		CutoffDate: period.CutoffDate.Format("2006-01-02"),

		TotalEmployees:   period.TotalEmployees,
		TotalGross:       period.TotalGross.StringFixed(2),
		TotalNet:         period.TotalNet.StringFixed(2),
		TotalDeductions:  period.TotalDeductions.StringFixed(2),
		TotalEPFEmployee: period.TotalEPFEmployee.StringFixed(2),
		TotalEPFEmployer: period.TotalEPFEmployer.StringFixed(2),
		TotalETF:         period.TotalETF.StringFixed(2),

		CreatedAt: period.CreatedAt.Format(time.RFC3339),
		UpdatedAt: period.UpdatedAt.Format(time.RFC3339),
	}
	if period.ProcessingDate != nil {
		v := period.ProcessingDate.Format("2006-01-02")
		resp.ProcessingDate = &v
	}
	if period.ApprovedBy != nil {
		v := period.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if period.ApprovedAt != nil {
		v := period.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if period.PaidAt != nil {
		v := period.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &v
	}
	return resp
}
