package compensation

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateSalaryRequest struct {
	EmployeeID  string          `json:"-"`
	BasicSalary decimal.Decimal `json:"basic_salary"`
	Currency    string          `json:"currency,omitempty"`
	StartDate   *string         `json:"start_date,omitempty"`
}

func (r *CreateSalaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be non-negative"})
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateAdjustmentRequest struct {
	EmployeeID string          `json:"-"`
	Kind       string          `json:"kind"` // "allowance" or "deduction"
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	IsFixed    *bool           `json:"is_fixed,omitempty"`
	StartDate  *string         `json:"start_date,omitempty"`
	EndDate    *string         `json:"end_date,omitempty"`
}

func (r *CreateAdjustmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Kind != string(AdjustmentKindAllowance) && r.Kind != string(AdjustmentKindDeduction) {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "must be 'allowance' or 'deduction'"})
	}
	if validator.IsEmpty(r.Category) {
		errs = append(errs, validator.ValidationError{Field: "category", Message: "is required"})
	}
	if r.Amount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be non-negative"})
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SalaryResponse struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	BasicSalary decimal.Decimal `json:"basic_salary"`
	Currency    string          `json:"currency"`
	StartDate   string          `json:"start_date"`
	EndDate     *string         `json:"end_date,omitempty"`
}

type AdjustmentResponse struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	Kind       string          `json:"kind"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	IsFixed    bool            `json:"is_fixed"`
	StartDate  string          `json:"start_date"`
	EndDate    *string         `json:"end_date,omitempty"`
}
