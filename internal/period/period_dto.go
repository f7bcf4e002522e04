package period

type CreatePeriodRequest struct {
	Year       int    `json:"year" binding:"required,gte=2000,lte=2100"`
	Month      int    `json:"month" binding:"required"`
	CutoffDate string `json:"cutoff_date" binding:"omitempty,datetime=2006-01-02"`
}

type PeriodResponse struct {
	ID         string `json:"id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	PeriodName string `json:"period_name"`
	Status     string `json:"status"`

	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	CutoffDate     string  `json:"cutoff_date"`
	ProcessingDate *string `json:"processing_date,omitempty"`

	TotalEmployees   int    `json:"total_employees"`
	TotalGross       string `json:"total_gross"`
	TotalNet         string `json:"total_net"`
	TotalDeductions  string `json:"total_deductions"`
	TotalEPFEmployee string `json:"total_epf_employee"`
	TotalEPFEmployer string `json:"total_epf_employer"`
	TotalETF         string `json:"total_etf"`

	ApprovedBy *string `json:"approved_by,omitempty"`
	ApprovedAt *string `json:"approved_at,omitempty"`
	PaidAt     *string `json:"paid_at,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
