package report

import "github.com/shopspring/decimal"

// PayrollSummaryResponse aggregates settled payslips for one period.
type PayrollSummaryResponse struct {
	PeriodMonth     int             `json:"period_month"`
	PeriodYear      int             `json:"period_year"`
	EmployeeCount   int             `json:"employee_count"`
	TotalBasic      decimal.Decimal `json:"total_basic"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalTax        decimal.Decimal `json:"total_tax"`
	TotalNet        decimal.Decimal `json:"total_net"`
	DraftRuns       int             `json:"draft_runs"`
	ProcessedRuns   int             `json:"processed_runs"`
}

// DepartmentCost is one slice of the department distribution report.
type DepartmentCost struct {
	Department    string          `json:"department"`
	EmployeeCount int             `json:"employee_count"`
	TotalNet      decimal.Decimal `json:"total_net"`
}
