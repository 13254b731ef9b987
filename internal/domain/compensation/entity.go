package compensation

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryRecord is a time-bounded basic salary entry. A nil EndDate means the
// record is currently open; at most one open record should exist per
// employee, which the service maintains by closing the previous record when
// a new one is created.
type SalaryRecord struct {
	ID          string
	EmployeeID  string
	BasicSalary decimal.Decimal
	Currency    string
	StartDate   time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AdjustmentKind enum
type AdjustmentKind string

const (
	AdjustmentKindAllowance AdjustmentKind = "allowance"
	AdjustmentKindDeduction AdjustmentKind = "deduction"
)

// AdjustmentRecord is a recurring allowance or deduction. Unlike salaries,
// any number of adjustments may be effective at the same time.
type AdjustmentRecord struct {
	ID         string
	EmployeeID string
	Kind       AdjustmentKind
	Category   string
	Amount     decimal.Decimal
	IsFixed    bool
	StartDate  time.Time
	EndDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
