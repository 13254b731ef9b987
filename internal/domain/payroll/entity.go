package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/compensation"
	"github.com/shopspring/decimal"
)

// RunStatus enum. Draft runs may still be edited; processed is terminal.
type RunStatus string

const (
	RunStatusDraft     RunStatus = "draft"
	RunStatusProcessed RunStatus = "processed"
)

// PayrollRun is one employee's payroll for one calendar month. BasicSalary
// is a snapshot taken at creation so a later salary change never alters a
// historical run. NetSalary here is the draft preview (basic minus the
// override); the fully itemized net lives on the Payslip.
type PayrollRun struct {
	ID                 string
	EmployeeID         string
	PeriodMonth        int
	PeriodYear         int
	BasicSalary        decimal.Decimal
	DeductionsOverride decimal.Decimal
	NetSalary          decimal.Decimal
	Status             RunStatus
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined fields
	EmployeeName *string
}

// PaymentStatus enum for payslips.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Payslip is the immutable settlement result, created at most once per run.
// gross = basic + total allowances and net = gross - total deductions - tax
// hold at creation and are never recomputed.
type Payslip struct {
	ID              string
	PayrollRunID    string
	EmployeeID      string
	BasicSalary     decimal.Decimal
	TotalAllowances decimal.Decimal
	TotalDeductions decimal.Decimal
	GrossSalary     decimal.Decimal
	Tax             decimal.Decimal
	NetSalary       decimal.Decimal
	PaymentStatus   PaymentStatus
	PaymentDate     *time.Time
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DetailKind enum for payslip line items.
type DetailKind string

const (
	DetailKindAllowance DetailKind = "allowance"
	DetailKindDeduction DetailKind = "deduction"
)

type PayslipDetail struct {
	ID          string
	PayslipID   string
	Kind        DetailKind
	Description string
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

// BreakdownLine is one itemized allowance or deduction in a computation.
type BreakdownLine struct {
	Category string
	Amount   decimal.Decimal
}

// Breakdown is the full financial derivation for one employee and period.
// TotalDeductions covers adjustment-sourced deductions only; run-level
// overrides are applied at settlement.
type Breakdown struct {
	EmployeeID      string
	PeriodMonth     int
	PeriodYear      int
	BasicSalary     decimal.Decimal
	TotalAllowances decimal.Decimal
	TotalDeductions decimal.Decimal
	GrossSalary     decimal.Decimal
	Tax             decimal.Decimal
	NetSalary       decimal.Decimal
	Allowances      []BreakdownLine
	Deductions      []BreakdownLine
}

// SplitAdjustments splits effective adjustments into ordered allowance and
// deduction lines and sums each side.
func SplitAdjustments(records []compensation.AdjustmentRecord) (allowances, deductions []BreakdownLine, totalAllowances, totalDeductions decimal.Decimal) {
	totalAllowances = decimal.Zero
	totalDeductions = decimal.Zero
	for _, rec := range records {
		line := BreakdownLine{Category: rec.Category, Amount: rec.Amount}
		switch rec.Kind {
		case compensation.AdjustmentKindAllowance:
			allowances = append(allowances, line)
			totalAllowances = totalAllowances.Add(rec.Amount)
		case compensation.AdjustmentKindDeduction:
			deductions = append(deductions, line)
			totalDeductions = totalDeductions.Add(rec.Amount)
		}
	}
	return allowances, deductions, totalAllowances, totalDeductions
}
