package transfer

import "time"

func mapToResponse(batch *PayrollBankTransfer) TransferResponse {
	resp := TransferResponse{
		ID:             batch.ID.String(),
		PeriodID:       batch.PeriodID.String(),
		BatchReference: batch.BatchReference,
		Status:         batch.Status,

		TotalEmployees: batch.TotalEmployees,
		TotalAmount:    batch.TotalAmount.StringFixed(2),

		BankFilePath:   batch.BankFilePath,
		BankFileFormat: batch.BankFileFormat,

		BankResponse: batch.BankResponse,
		ErrorDetails: batch.ErrorDetails,

		CreatedAt: batch.CreatedAt.Format(time.RFC3339),
		UpdatedAt: batch.UpdatedAt.Format(time.RFC3339),
	}
	if batch.GeneratedAt != nil {
		v := batch.GeneratedAt.Format(time.RFC3339)
		resp.GeneratedAt = &v
	}
	if batch.SentAt != nil {
		v := batch.SentAt.Format(time.RFC3339)
		resp.SentAt = &v
	}
	if batch.ProcessedAt != nil {
		v := batch.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &v
	}
	return resp
}
