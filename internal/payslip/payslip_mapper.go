package payslip

import "time"

func mapToResponse(slip *Payslip) PayslipResponse {
	resp := PayslipResponse{
		ID:              slip.ID.String(),
		CompanyID:       slip.CompanyID.String(),
		PeriodID:        slip.PeriodID.String(),
		EmployeeID:      slip.EmployeeID.String(),
		ReferenceNumber: slip.ReferenceNumber,
		Status:          slip.Status,

		WorkingDays:  slip.WorkingDays,
		AttendedDays: slip.AttendedDays,
		LeaveDays:    slip.LeaveDays,

		BasicSalary:      slip.BasicSalary.StringFixed(2),
		TotalOvertimePay: slip.TotalOvertimePay.StringFixed(2),
		TotalAllowances:  slip.TotalAllowances.StringFixed(2),
		AttendanceBonus:  slip.AttendanceBonus.StringFixed(2),
		PerformanceBonus: slip.PerformanceBonus.StringFixed(2),
		ReligiousPay:     slip.ReligiousPay.StringFixed(2),
		FridaySalary:     slip.FridaySalary.StringFixed(2),
		GrossSalary:      slip.GrossSalary.StringFixed(2),

		LeaveDeduction:          slip.LeaveDeduction.StringFixed(2),
		LatePenalty:             slip.LatePenalty.StringFixed(2),
		AdvanceDeduction:        slip.AdvanceDeduction.StringFixed(2),
		LunchViolationPenalty:   slip.LunchViolationPenalty.StringFixed(2),
		EmployeeEPFContribution: slip.EmployeeEPFContribution.StringFixed(2),
		IncomeTax:               slip.IncomeTax.StringFixed(2),
		TotalDeductions:         slip.TotalDeductions.StringFixed(2),

		NetSalary: slip.NetSalary.StringFixed(2),

		EPFSalaryBase:           slip.EPFSalaryBase.StringFixed(2),
		EmployerEPFContribution: slip.EmployerEPFContribution.StringFixed(2),
		ETFContribution:         slip.ETFContribution.StringFixed(2),

		RoleBasedCalculations: slip.RoleBasedCalculations,
		AttendanceBreakdown:   slip.AttendanceBreakdown,
		PenaltyBreakdown:      slip.PenaltyBreakdown,
	}
	if slip.CalculatedAt != nil {
		v := slip.CalculatedAt.Format(time.RFC3339)
		resp.CalculatedAt = &v
	}
	if slip.ApprovedAt != nil {
		v := slip.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}
