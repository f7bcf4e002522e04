package payslip

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/payrollconfig"
	configerrors "go-payroll/internal/payrollconfig/errors"

	"github.com/shopspring/decimal"
)

const (
	RoundingHalfUp   = "HALF_UP"
	RoundingDown     = "DOWN"
	RoundingHalfEven = "HALF_EVEN"
)

var (
	hundred             = decimal.NewFromInt(100)
	defaultShiftHours   = decimal.NewFromInt(8)
	defaultOTMult       = decimal.RequireFromString("1.5")
	defaultFridayMult   = decimal.NewFromInt(2)
	defaultEPFEmployee  = decimal.NewFromInt(8)
	defaultEPFEmployer  = decimal.NewFromInt(12)
	defaultETF          = decimal.NewFromInt(3)
	defaultGraceMinutes = 15
)

type rounder struct {
	mode string
}

func (r rounder) round(d decimal.Decimal) decimal.Decimal {
	switch r.mode {
	case RoundingDown:
		return d.RoundDown(2)
	case RoundingHalfEven:
		return d.RoundBank(2)
	default:
		return d.Round(2)
	}
}

type taxBand struct {
	UpTo *decimal.Decimal `json:"up_to"`
	Rate decimal.Decimal  `json:"rate"`
}

// rateCard adalah seluruh parameter terselesaikan untuk satu karyawan pada
// satu tanggal proses. Diambil sekali di awal kalkulasi supaya langkah
// berikutnya deterministik.
type rateCard struct {
	rounding rounder

	shiftHours decimal.Decimal
	otMult     decimal.Decimal
	fridayMult decimal.Decimal

	transport  decimal.Decimal
	telephone  decimal.Decimal
	fuelPerDay decimal.Decimal
	mealPerDay decimal.Decimal
	interim    decimal.Decimal
	education  decimal.Decimal

	attendanceBonus  decimal.Decimal
	performanceBonus decimal.Decimal
	religiousPay     decimal.Decimal
	fridaySalary     decimal.Decimal

	epfEmployeePct decimal.Decimal
	epfEmployerPct decimal.Decimal
	etfPct         decimal.Decimal
	epfExempt      []string

	graceMinutes    int
	latePerMinute   decimal.Decimal
	lunchAmount     decimal.Decimal
	lunchFree       int
	entitlementDays int
	taxBands        []taxBand
}

type calculator struct {
	configs payrollconfig.Resolver
}

func newCalculator(configs payrollconfig.Resolver) *calculator {
	return &calculator{configs: configs}
}

func (c *calculator) textOr(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time, def string) (string, error) {
	v, err := c.configs.Resolve(ctx, companyID, key, scope, asOf)
	if err != nil {
		if errors.Is(err, configerrors.ErrConfigNotFound) {
			return def, nil
		}
		return "", err
	}
	return v.Text()
}

// percentOr menoleransi key yang disimpan sebagai PERCENTAGE maupun DECIMAL.
func (c *calculator) percentOr(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time, def decimal.Decimal) (decimal.Decimal, error) {
	v, err := c.configs.Resolve(ctx, companyID, key, scope, asOf)
	if err != nil {
		if errors.Is(err, configerrors.ErrConfigNotFound) {
			return def, nil
		}
		return decimal.Zero, err
	}
	if v.Type == payrollconfig.ValueDecimal {
		return v.Decimal()
	}
	return v.Percent()
}

func (c *calculator) jsonOr(ctx context.Context, companyID, key string, scope payrollconfig.EmployeeScope, asOf time.Time, target any) error {
	v, err := c.configs.Resolve(ctx, companyID, key, scope, asOf)
	if err != nil {
		if errors.Is(err, configerrors.ErrConfigNotFound) {
			return nil
		}
		return err
	}
	return v.JSON(target)
}

// loadRates = langkah 1: seluruh parameter tarif untuk karyawan+tanggal.
func (c *calculator) loadRates(ctx context.Context, companyID string, scope payrollconfig.EmployeeScope, asOf time.Time) (*rateCard, error) {
	card := &rateCard{}

	mode, err := c.textOr(ctx, companyID, payrollconfig.KeyRoundingMode, scope, asOf, RoundingHalfUp)
	if err != nil {
		return nil, err
	}
	card.rounding = rounder{mode: mode}

	decimalKeys := []struct {
		key string
		dst *decimal.Decimal
		def decimal.Decimal
	}{
		{payrollconfig.KeyShiftHours, &card.shiftHours, defaultShiftHours},
		{payrollconfig.KeyOvertimeMultiplier, &card.otMult, defaultOTMult},
		{payrollconfig.KeyFridayOvertimeMultiplier, &card.fridayMult, defaultFridayMult},
		{payrollconfig.KeyTransportAllowance, &card.transport, decimal.Zero},
		{payrollconfig.KeyTelephoneAllowance, &card.telephone, decimal.Zero},
		{payrollconfig.KeyFuelPerDay, &card.fuelPerDay, decimal.Zero},
		{payrollconfig.KeyMealPerDay, &card.mealPerDay, decimal.Zero},
		{payrollconfig.KeyInterimAllowance, &card.interim, decimal.Zero},
		{payrollconfig.KeyEducationAllowance, &card.education, decimal.Zero},
		{payrollconfig.KeyAttendanceBonus, &card.attendanceBonus, decimal.Zero},
		{payrollconfig.KeyPerformanceBonus, &card.performanceBonus, decimal.Zero},
		{payrollconfig.KeyReligiousPay, &card.religiousPay, decimal.Zero},
		{payrollconfig.KeyFridaySalary, &card.fridaySalary, decimal.Zero},
		{payrollconfig.KeyLatePenaltyPerMinute, &card.latePerMinute, decimal.Zero},
		{payrollconfig.KeyLunchViolationAmount, &card.lunchAmount, decimal.Zero},
	}
	for _, k := range decimalKeys {
		v, err := c.configs.ResolveDecimalOr(ctx, companyID, k.key, scope, asOf, k.def)
		if err != nil {
			return nil, err
		}
		*k.dst = v
	}

	card.epfEmployeePct, err = c.percentOr(ctx, companyID, payrollconfig.KeyEPFEmployeePercent, scope, asOf, defaultEPFEmployee)
	if err != nil {
		return nil, err
	}
	card.epfEmployerPct, err = c.percentOr(ctx, companyID, payrollconfig.KeyEPFEmployerPercent, scope, asOf, defaultEPFEmployer)
	if err != nil {
		return nil, err
	}
	card.etfPct, err = c.percentOr(ctx, companyID, payrollconfig.KeyETFPercent, scope, asOf, defaultETF)
	if err != nil {
		return nil, err
	}
	card.graceMinutes, err = c.configs.ResolveIntOr(ctx, companyID, payrollconfig.KeyLateGraceMinutes, scope, asOf, defaultGraceMinutes)
	if err != nil {
		return nil, err
	}
	card.lunchFree, err = c.configs.ResolveIntOr(ctx, companyID, payrollconfig.KeyLunchViolationFree, scope, asOf, 0)
	if err != nil {
		return nil, err
	}
	card.entitlementDays, err = c.configs.ResolveIntOr(ctx, companyID, payrollconfig.KeyLeaveEntitlementDays, scope, asOf, 0)
	if err != nil {
		return nil, err
	}

	if err := c.jsonOr(ctx, companyID, payrollconfig.KeyTaxBrackets, scope, asOf, &card.taxBands); err != nil {
		return nil, err
	}
	if err := c.jsonOr(ctx, companyID, payrollconfig.KeyEPFExemptComponents, scope, asOf, &card.epfExempt); err != nil {
		return nil, err
	}

	return card, nil
}

// compute menjalankan langkah 2–11 dan menulis hasilnya ke slip.
// AdvanceDeduction diisi pemanggil sebelum memanggil compute karena
// reservasinya butuh transaksi.
func (c *calculator) compute(slip *Payslip, empl *employee.Employee, att *attendance.PeriodAttendance, card *rateCard, processingDate time.Time) error {
	rd := card.rounding

	slip.WorkingDays = att.WorkingDays
	slip.AttendedDays = att.AttendedDays
	slip.LeaveDays = att.LeaveDays
	slip.BasicSalary = empl.BasicSalary

	workingDays := decimal.NewFromInt(int64(att.WorkingDays))
	attendedDays := decimal.NewFromInt(int64(att.AttendedDays))

	// Langkah 2: absen tanpa jatah cuti dipotong proporsional dari basic.
	paidLeave := att.ApprovedLeaveDays
	if paidLeave > card.entitlementDays {
		paidLeave = card.entitlementDays
	}
	absentDays := att.WorkingDays - att.AttendedDays
	unpaidDays := absentDays - paidLeave
	if unpaidDays < 0 {
		unpaidDays = 0
	}
	slip.LeaveDeduction = decimal.Zero
	if unpaidDays > 0 && att.WorkingDays > 0 {
		slip.LeaveDeduction = rd.round(
			empl.BasicSalary.
				Mul(decimal.NewFromInt(int64(unpaidDays))).
				Div(workingDays),
		)
	}

	// Langkah 3: lembur dihitung dari tarif per jam basic.
	hourlyRate := decimal.Zero
	if att.WorkingDays > 0 && card.shiftHours.IsPositive() {
		hourlyRate = empl.BasicSalary.Div(workingDays.Mul(card.shiftHours))
	}
	slip.OvertimeHours = att.OvertimeHours
	slip.FridayOvertimeHours = att.FridayOvertimeHours
	slip.OvertimePay = rd.round(att.OvertimeHours.Mul(hourlyRate).Mul(card.otMult))
	slip.FridayOvertimePay = rd.round(att.FridayOvertimeHours.Mul(hourlyRate).Mul(card.fridayMult))
	slip.TotalOvertimePay = slip.OvertimePay.Add(slip.FridayOvertimePay)

	// Langkah 4: tunjangan flat + tunjangan per hari hadir.
	slip.TransportAllowance = rd.round(card.transport)
	slip.TelephoneAllowance = rd.round(card.telephone)
	slip.FuelAllowance = rd.round(card.fuelPerDay.Mul(attendedDays))
	slip.MealAllowance = rd.round(card.mealPerDay.Mul(attendedDays))
	slip.InterimAllowance = rd.round(card.interim)
	slip.EducationAllowance = rd.round(card.education)
	slip.TotalAllowances = slip.TransportAllowance.
		Add(slip.TelephoneAllowance).
		Add(slip.FuelAllowance).
		Add(slip.MealAllowance).
		Add(slip.InterimAllowance).
		Add(slip.EducationAllowance)

	fullAttendance := att.AttendedDays >= att.WorkingDays && att.WorkingDays > 0
	slip.AttendanceBonus = decimal.Zero
	if fullAttendance {
		slip.AttendanceBonus = rd.round(card.attendanceBonus)
	}
	slip.PerformanceBonus = rd.round(card.performanceBonus)
	slip.ReligiousPay = rd.round(card.religiousPay)
	slip.FridaySalary = rd.round(card.fridaySalary)

	// Langkah 5: penalti keterlambatan dan pelanggaran jam makan.
	chargeableMinutes := att.LateMinutes - card.graceMinutes*att.LateArrivals
	if chargeableMinutes < 0 {
		chargeableMinutes = 0
	}
	slip.LatePenalty = rd.round(card.latePerMinute.Mul(decimal.NewFromInt(int64(chargeableMinutes))))

	chargeableLunch := att.LunchViolations - card.lunchFree
	if chargeableLunch < 0 {
		chargeableLunch = 0
	}
	slip.LunchViolationPenalty = rd.round(card.lunchAmount.Mul(decimal.NewFromInt(int64(chargeableLunch))))

	// Langkah 6
	slip.GrossSalary = slip.BasicSalary.
		Add(slip.TotalAllowances).
		Add(slip.TotalOvertimePay).
		Add(slip.AttendanceBonus).
		Add(slip.PerformanceBonus).
		Add(slip.ReligiousPay).
		Add(slip.FridaySalary)

	// Langkah 7: basis EPF = gross dikurangi komponen yang dikecualikan.
	exemptApplied := map[string]string{}
	epfBase := slip.GrossSalary
	for _, name := range card.epfExempt {
		amt, ok := c.componentAmount(slip, name)
		if !ok {
			continue
		}
		epfBase = epfBase.Sub(amt)
		exemptApplied[name] = amt.StringFixed(2)
	}
	if epfBase.IsNegative() {
		epfBase = decimal.Zero
	}
	slip.EPFSalaryBase = epfBase
	slip.EmployeeEPFContribution = rd.round(epfBase.Mul(card.epfEmployeePct).Div(hundred))
	slip.EmployerEPFContribution = rd.round(epfBase.Mul(card.epfEmployerPct).Div(hundred))
	slip.ETFContribution = rd.round(epfBase.Mul(card.etfPct).Div(hundred))

	// Langkah 9: pajak progresif per band, tiap band dibulatkan lalu dijumlah.
	tax, bands := c.progressiveTax(slip.GrossSalary, card.taxBands, rd)
	slip.IncomeTax = tax

	// Langkah 10–11: total potongan, net tidak boleh negatif.
	slip.TotalDeductions = slip.LeaveDeduction.
		Add(slip.LatePenalty).
		Add(slip.AdvanceDeduction).
		Add(slip.LunchViolationPenalty).
		Add(slip.EmployeeEPFContribution).
		Add(slip.IncomeTax)

	clamped := false
	shortfall := decimal.Zero
	slip.NetSalary = slip.GrossSalary.Sub(slip.TotalDeductions)
	if slip.NetSalary.IsNegative() {
		shortfall = slip.NetSalary.Neg()
		slip.NetSalary = decimal.Zero
		clamped = true
	}

	return c.writeTraces(slip, att, card, hourlyRate, paidLeave, unpaidDays, fullAttendance,
		chargeableMinutes, chargeableLunch, clamped, shortfall, exemptApplied, bands, processingDate)
}

func (c *calculator) componentAmount(slip *Payslip, name string) (decimal.Decimal, bool) {
	switch name {
	case "transport_allowance":
		return slip.TransportAllowance, true
	case "telephone_allowance":
		return slip.TelephoneAllowance, true
	case "fuel_allowance":
		return slip.FuelAllowance, true
	case "meal_allowance":
		return slip.MealAllowance, true
	case "interim_allowance":
		return slip.InterimAllowance, true
	case "education_allowance":
		return slip.EducationAllowance, true
	case "overtime_pay":
		return slip.TotalOvertimePay, true
	case "attendance_bonus":
		return slip.AttendanceBonus, true
	case "performance_bonus":
		return slip.PerformanceBonus, true
	case "religious_pay":
		return slip.ReligiousPay, true
	case "friday_salary":
		return slip.FridaySalary, true
	default:
		return decimal.Zero, false
	}
}

func (c *calculator) progressiveTax(gross decimal.Decimal, bands []taxBand, rd rounder) (decimal.Decimal, []taxBandTrace) {
	total := decimal.Zero
	lower := decimal.Zero
	var trace []taxBandTrace
	for _, band := range bands {
		upper := gross
		if band.UpTo != nil && band.UpTo.LessThan(gross) {
			upper = *band.UpTo
		}
		taxed := upper.Sub(lower)
		if !taxed.IsPositive() {
			break
		}
		amount := rd.round(taxed.Mul(band.Rate).Div(hundred))
		total = total.Add(amount)

		entry := taxBandTrace{
			Rate:   band.Rate.String(),
			Taxed:  taxed.StringFixed(2),
			Amount: amount.StringFixed(2),
		}
		if band.UpTo != nil {
			entry.UpTo = band.UpTo.StringFixed(2)
		}
		trace = append(trace, entry)

		if band.UpTo == nil || !band.UpTo.LessThan(gross) {
			break
		}
		lower = *band.UpTo
	}
	return total, trace
}

func (c *calculator) writeTraces(
	slip *Payslip,
	att *attendance.PeriodAttendance,
	card *rateCard,
	hourlyRate decimal.Decimal,
	paidLeave int,
	unpaidDays int,
	fullAttendance bool,
	chargeableMinutes int,
	chargeableLunch int,
	clamped bool,
	shortfall decimal.Decimal,
	exemptApplied map[string]string,
	bands []taxBandTrace,
	processingDate time.Time,
) error {
	attendanceRatio := decimal.Zero
	if att.WorkingDays > 0 {
		attendanceRatio = decimal.NewFromInt(int64(att.AttendedDays)).
			Div(decimal.NewFromInt(int64(att.WorkingDays)))
	}

	attJSON, err := json.Marshal(attendanceTrace{
		WorkingDays:       att.WorkingDays,
		AttendedDays:      att.AttendedDays,
		LeaveDays:         att.LeaveDays,
		PaidLeaveDays:     paidLeave,
		UnpaidLeaveDays:   unpaidDays,
		OvertimeHours:     att.OvertimeHours.String(),
		FridayOvertime:    att.FridayOvertimeHours.String(),
		HourlyRate:        hourlyRate.Round(4).String(),
		AttendanceRatio:   attendanceRatio.Round(4).String(),
		EntitlementDays:   card.entitlementDays,
		FullAttendance:    fullAttendance,
		ShiftHoursPerDay:  card.shiftHours.String(),
		LateArrivals:      att.LateArrivals,
		LateMinutes:       att.LateMinutes,
		LunchViolations:   att.LunchViolations,
		ProcessingDateISO: processingDate.Format("2006-01-02"),
	})
	if err != nil {
		return err
	}
	slip.AttendanceBreakdown = attJSON

	penaltyJSON, err := json.Marshal(penaltyTrace{
		GraceMinutes:        card.graceMinutes,
		ChargeableMinutes:   chargeableMinutes,
		LatePenaltyPerMin:   card.latePerMinute.String(),
		LatePenalty:         slip.LatePenalty.StringFixed(2),
		FreeLunchViolations: card.lunchFree,
		ChargeableLunch:     chargeableLunch,
		LunchViolationRate:  card.lunchAmount.String(),
		LunchPenalty:        slip.LunchViolationPenalty.StringFixed(2),
		NegativeNetClamped:  clamped,
		ClampedShortfall:    shortfallString(clamped, shortfall),
	})
	if err != nil {
		return err
	}
	slip.PenaltyBreakdown = penaltyJSON

	if len(exemptApplied) == 0 {
		exemptApplied = nil
	}
	roleJSON, err := json.Marshal(roleBasedTrace{
		RoundingMode:       card.rounding.mode,
		OvertimeMultiplier: card.otMult.String(),
		FridayMultiplier:   card.fridayMult.String(),
		EPFEmployeePct:     card.epfEmployeePct.String(),
		EPFEmployerPct:     card.epfEmployerPct.String(),
		ETFPct:             card.etfPct.String(),
		EPFExemptApplied:   exemptApplied,
		TaxBands:           bands,
	})
	if err != nil {
		return err
	}
	slip.RoleBasedCalculations = roleJSON

	return nil
}

func shortfallString(clamped bool, shortfall decimal.Decimal) string {
	if !clamped {
		return ""
	}
	return shortfall.StringFixed(2)
}
