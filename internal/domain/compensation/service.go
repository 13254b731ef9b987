package compensation

import "context"

type CompensationService interface {
	CreateSalary(ctx context.Context, req CreateSalaryRequest) (SalaryResponse, error)
	ListSalaries(ctx context.Context, employeeID string) ([]SalaryResponse, error)
	CreateAdjustment(ctx context.Context, req CreateAdjustmentRequest) (AdjustmentResponse, error)
	ListAdjustments(ctx context.Context, employeeID string) ([]AdjustmentResponse, error)
	CloseAdjustment(ctx context.Context, id string, endDate string) error
}
