package advance

type CreateAdvanceRequest struct {
	EmployeeID   string `json:"employee_id" binding:"required"`
	AdvanceType  string `json:"advance_type" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
	Installments int    `json:"installments" binding:"required,min=1"`
	Reason       string `json:"reason"`
}

type AdvanceResponse struct {
	ID                string  `json:"id"`
	CompanyID         string  `json:"company_id"`
	EmployeeID        string  `json:"employee_id"`
	AdvanceType       string  `json:"advance_type"`
	Amount            string  `json:"amount"`
	OutstandingAmount string  `json:"outstanding_amount"`
	MonthlyDeduction  string  `json:"monthly_deduction"`
	Installments      int     `json:"installments"`
	Status            string  `json:"status"`
	RequestedAt       string  `json:"requested_at"`
	ApprovedAt        *string `json:"approved_at,omitempty"`
	DisbursementDate  *string `json:"disbursement_date,omitempty"`
	CompletionDate    *string `json:"completion_date,omitempty"`
	IsOverdue         bool    `json:"is_overdue"`
}
