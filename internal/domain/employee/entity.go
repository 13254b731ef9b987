package employee

import "time"

type Employee struct {
	ID          string
	UserID      *string
	Code        string
	FullName    string
	Email       string
	Phone       *string
	Department  *string
	Position    *string
	BankName    *string
	BankAccount *string
	HireDate    *time.Time
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
