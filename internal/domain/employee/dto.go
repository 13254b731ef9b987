package employee

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	Code        string           `json:"code"`
	FullName    string           `json:"full_name"`
	Email       string           `json:"email"`
	Phone       *string          `json:"phone,omitempty"`
	Department  *string          `json:"department,omitempty"`
	Position    *string          `json:"position,omitempty"`
	BankName    *string          `json:"bank_name,omitempty"`
	BankAccount *string          `json:"bank_account,omitempty"`
	HireDate    *string          `json:"hire_date,omitempty"`
	BasicSalary *decimal.Decimal `json:"basic_salary,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "is required"})
	}
	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "is required"})
	}
	if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "must be a valid email address"})
	}
	if r.HireDate != nil {
		if _, ok := validator.IsValidDate(*r.HireDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "hire_date", Message: "must be in YYYY-MM-DD format"})
		}
	}
	if r.BasicSalary != nil && r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateEmployeeRequest struct {
	ID          string           `json:"-"`
	FullName    *string          `json:"full_name,omitempty"`
	Phone       *string          `json:"phone,omitempty"`
	Department  *string          `json:"department,omitempty"`
	Position    *string          `json:"position,omitempty"`
	BankName    *string          `json:"bank_name,omitempty"`
	BankAccount *string          `json:"bank_account,omitempty"`
	BasicSalary *decimal.Decimal `json:"basic_salary,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FullName != nil && validator.IsEmpty(*r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "must not be empty"})
	}
	if r.BasicSalary != nil && r.BasicSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeFilter struct {
	Search     string
	Department *string
	Page       int
	Limit      int
}

type EmployeeResponse struct {
	ID          string           `json:"id"`
	Code        string           `json:"code"`
	FullName    string           `json:"full_name"`
	Email       string           `json:"email"`
	Phone       *string          `json:"phone,omitempty"`
	Department  *string          `json:"department,omitempty"`
	Position    *string          `json:"position,omitempty"`
	BankName    *string          `json:"bank_name,omitempty"`
	BankAccount *string          `json:"bank_account,omitempty"`
	HireDate    *string          `json:"hire_date,omitempty"`
	IsActive    bool             `json:"is_active"`
	BasicSalary *decimal.Decimal `json:"basic_salary,omitempty"`
}

type ListEmployeeResponse struct {
	Data       []EmployeeResponse `json:"data"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
}
