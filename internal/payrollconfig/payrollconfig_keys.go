package payrollconfig

// Kunci konfigurasi yang dibaca oleh kalkulator payslip. Semuanya bisa
// di-scope per role/department dan di-window per tanggal efektif.
const (
	KeyRoundingMode = "payroll.rounding_mode" // TEXT: HALF_UP | DOWN | HALF_EVEN

	KeyOvertimeMultiplier       = "overtime.rate_multiplier"   // DECIMAL, kelipatan tarif per jam
	KeyFridayOvertimeMultiplier = "overtime.friday_multiplier" // DECIMAL
	KeyShiftHours               = "overtime.shift_hours"       // INTEGER, jam kerja per hari

	KeyTransportAllowance = "allowance.transport"    // DECIMAL per bulan
	KeyTelephoneAllowance = "allowance.telephone"    // DECIMAL per bulan
	KeyFuelPerDay         = "allowance.fuel_per_day" // DECIMAL per hari hadir
	KeyMealPerDay         = "allowance.meal_per_day" // DECIMAL per hari hadir
	KeyInterimAllowance   = "allowance.interim"      // DECIMAL per bulan
	KeyEducationAllowance = "allowance.education"    // DECIMAL per bulan

	KeyAttendanceBonus  = "bonus.attendance"  // DECIMAL, dibayar saat hadir penuh
	KeyPerformanceBonus = "bonus.performance" // DECIMAL
	KeyReligiousPay     = "bonus.religious"   // DECIMAL
	KeyFridaySalary     = "bonus.friday"      // DECIMAL

	KeyEPFEmployeePercent = "epf.employee_percent"  // PERCENTAGE
	KeyEPFEmployerPercent = "epf.employer_percent"  // PERCENTAGE
	KeyETFPercent         = "etf.percent"           // PERCENTAGE
	KeyEPFExemptComponents = "epf.exempt_components" // JSON: daftar nama komponen

	KeyLateGraceMinutes     = "penalty.late_grace_minutes"      // INTEGER
	KeyLatePenaltyPerMinute = "penalty.late_per_minute"         // DECIMAL
	KeyLunchViolationAmount = "penalty.lunch_violation_amount"  // DECIMAL per pelanggaran
	KeyLunchViolationFree   = "penalty.lunch_violation_allowed" // INTEGER, jumlah bebas penalti

	KeyTaxBrackets          = "tax.brackets"           // JSON: [{"threshold":..., "rate":...}]
	KeyLeaveEntitlementDays = "leave.entitlement_days" // INTEGER per bulan

	KeyAdvanceMaxPercentage = "advance.max_percentage" // PERCENTAGE dari basic salary
	KeyAdvanceMaxPerYear    = "advance.max_per_year"   // INTEGER

	KeyEfficiencyAttendanceWeight = "efficiency.attendance_weight" // PERCENTAGE
)
