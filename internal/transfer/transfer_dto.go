package transfer

type GenerateTransferRequest struct {
	PeriodID string `json:"period_id" binding:"required,uuid"`
}

type UpdateTransferStatusRequest struct {
	Status       string `json:"status" binding:"required"`
	BankResponse string `json:"bank_response" binding:"omitempty,max=2000"`
	ErrorDetails string `json:"error_details" binding:"omitempty,max=2000"`
}

type TransferResponse struct {
	ID             string `json:"id"`
	PeriodID       string `json:"period_id"`
	BatchReference string `json:"batch_reference"`
	Status         string `json:"status"`

	TotalEmployees int    `json:"total_employees"`
	TotalAmount    string `json:"total_amount"`

	BankFilePath   string `json:"bank_file_path,omitempty"`
	BankFileFormat string `json:"bank_file_format,omitempty"`

	GeneratedAt *string `json:"generated_at,omitempty"`
	SentAt      *string `json:"sent_at,omitempty"`
	ProcessedAt *string `json:"processed_at,omitempty"`

	BankResponse *string `json:"bank_response,omitempty"`
	ErrorDetails *string `json:"error_details,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
