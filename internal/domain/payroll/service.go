package payroll

import "context"

type PayrollService interface {
	// Computation (read-only, repeatable)
	ComputePayroll(ctx context.Context, employeeID string, month, year int) (BreakdownResponse, error)

	// Runs
	CreateDraftRun(ctx context.Context, req CreateRunRequest) (PayrollRunResponse, error)
	CreateBulkRuns(ctx context.Context, req CreateBulkRunsRequest) (BulkRunResult, error)
	UpdateDraftRun(ctx context.Context, req UpdateRunRequest) (PayrollRunResponse, error)
	SettleRun(ctx context.Context, runID string) (PayrollRunResponse, error)
	GetRun(ctx context.Context, id string) (PayrollRunResponse, error)
	ListRuns(ctx context.Context, filter RunFilter) (ListRunResponse, error)

	// Payslips
	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
	ListPayslips(ctx context.Context, filter PayslipFilter) (ListPayslipResponse, error)
	MarkPayslipPaid(ctx context.Context, req MarkPayslipPaidRequest) (PayslipResponse, error)
}
