package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type CreateRunRequest struct {
	EmployeeID         string           `json:"employee_id"`
	PeriodMonth        int              `json:"period_month"`
	PeriodYear         int              `json:"period_year"`
	DeductionsOverride *decimal.Decimal `json:"deductions_override,omitempty"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !validator.IsValidPeriod(r.PeriodMonth, r.PeriodYear) {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "month must be 1-12 and year 2000 or later"})
	}
	if r.DeductionsOverride != nil && r.DeductionsOverride.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "deductions_override", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateBulkRunsRequest struct {
	PeriodMonth        int              `json:"period_month"`
	PeriodYear         int              `json:"period_year"`
	DeductionsOverride *decimal.Decimal `json:"deductions_override,omitempty"`
}

func (r *CreateBulkRunsRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidPeriod(r.PeriodMonth, r.PeriodYear) {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "month must be 1-12 and year 2000 or later"})
	}
	if r.DeductionsOverride != nil && r.DeductionsOverride.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "deductions_override", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateRunRequest struct {
	ID                 string          `json:"-"`
	DeductionsOverride decimal.Decimal `json:"deductions_override"`
}

func (r *UpdateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DeductionsOverride.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "deductions_override", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunFilter struct {
	PeriodMonth *int
	PeriodYear  *int
	Status      *string
	EmployeeID  *string
	Page        int
	Limit       int
}

type PayrollRunResponse struct {
	ID                 string          `json:"id"`
	EmployeeID         string          `json:"employee_id"`
	EmployeeName       *string         `json:"employee_name,omitempty"`
	PeriodMonth        int             `json:"period_month"`
	PeriodYear         int             `json:"period_year"`
	BasicSalary        decimal.Decimal `json:"basic_salary"`
	DeductionsOverride decimal.Decimal `json:"deductions_override"`
	NetSalary          decimal.Decimal `json:"net_salary"`
	Status             string          `json:"status"`
	CreatedBy          string          `json:"created_by"`
}

type ListRunResponse struct {
	Data       []PayrollRunResponse `json:"data"`
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
}

// BulkRunResult reports per-employee outcomes of a roster-wide run
// creation. Failures are isolated; successes stay committed.
type BulkRunResult struct {
	CreatedCount int      `json:"created_count"`
	SkippedCount int      `json:"skipped_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors,omitempty"`
}

// ========== COMPUTATION DTOs ==========

type BreakdownLineResponse struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type BreakdownResponse struct {
	EmployeeID      string                  `json:"employee_id"`
	PeriodMonth     int                     `json:"period_month"`
	PeriodYear      int                     `json:"period_year"`
	BasicSalary     decimal.Decimal         `json:"basic_salary"`
	TotalAllowances decimal.Decimal         `json:"total_allowances"`
	TotalDeductions decimal.Decimal         `json:"total_deductions"`
	GrossSalary     decimal.Decimal         `json:"gross_salary"`
	Tax             decimal.Decimal         `json:"tax"`
	NetSalary       decimal.Decimal         `json:"net_salary"`
	Allowances      []BreakdownLineResponse `json:"allowances_detail"`
	Deductions      []BreakdownLineResponse `json:"deductions_detail"`
}

// ========== PAYSLIP DTOs ==========

type PayslipFilter struct {
	EmployeeID  *string
	PeriodMonth *int
	PeriodYear  *int
	Page        int
	Limit       int
}

type PayslipDetailResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type PayslipResponse struct {
	ID              string                  `json:"id"`
	PayrollRunID    string                  `json:"payroll_run_id"`
	EmployeeID      string                  `json:"employee_id"`
	BasicSalary     decimal.Decimal         `json:"basic_salary"`
	TotalAllowances decimal.Decimal         `json:"total_allowances"`
	TotalDeductions decimal.Decimal         `json:"total_deductions"`
	GrossSalary     decimal.Decimal         `json:"gross_salary"`
	Tax             decimal.Decimal         `json:"tax"`
	NetSalary       decimal.Decimal         `json:"net_salary"`
	PaymentStatus   string                  `json:"payment_status"`
	PaymentDate     *string                 `json:"payment_date,omitempty"`
	Details         []PayslipDetailResponse `json:"details,omitempty"`
}

type ListPayslipResponse struct {
	Data       []PayslipResponse `json:"data"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

type MarkPayslipPaidRequest struct {
	ID          string  `json:"-"`
	PaymentDate *string `json:"payment_date,omitempty"`
}
