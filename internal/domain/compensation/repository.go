package compensation

import (
	"context"
	"time"
)

type CompensationRepository interface {
	// Salaries
	CreateSalary(ctx context.Context, rec SalaryRecord) (SalaryRecord, error)
	GetSalariesByEmployee(ctx context.Context, employeeID string) ([]SalaryRecord, error)
	CloseSalary(ctx context.Context, id string, endDate time.Time) error

	// Adjustments
	CreateAdjustment(ctx context.Context, rec AdjustmentRecord) (AdjustmentRecord, error)
	GetAdjustmentsByEmployee(ctx context.Context, employeeID string) ([]AdjustmentRecord, error)
	CloseAdjustment(ctx context.Context, id string, endDate time.Time) error
}
