package report

import "context"

type ReportRepository interface {
	GetPayrollSummary(ctx context.Context, month, year int) (PayrollSummaryResponse, error)
	GetDepartmentDistribution(ctx context.Context, month, year int) ([]DepartmentCost, error)
}
