package report

import "context"

type ReportService interface {
	PayrollSummary(ctx context.Context, month, year int) (PayrollSummaryResponse, error)
	DepartmentDistribution(ctx context.Context, month, year int) ([]DepartmentCost, error)
}
