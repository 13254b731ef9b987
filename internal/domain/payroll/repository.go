package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PayrollRepository interface {
	// Runs
	CreateRun(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetRunByID(ctx context.Context, id string) (PayrollRun, error)
	// GetRunByIDForUpdate locks the run row for the duration of the
	// surrounding transaction so concurrent settlements serialize.
	GetRunByIDForUpdate(ctx context.Context, id string) (PayrollRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]PayrollRun, int64, error)
	UpdateRunDeductions(ctx context.Context, id string, override, previewNet decimal.Decimal) (PayrollRun, error)
	MarkRunProcessed(ctx context.Context, id string) error

	// Payslips
	CreatePayslip(ctx context.Context, slip Payslip) (Payslip, error)
	GetPayslipByRunID(ctx context.Context, runID string) (Payslip, error)
	GetPayslipByID(ctx context.Context, id string) (Payslip, error)
	ListPayslips(ctx context.Context, filter PayslipFilter) ([]Payslip, int64, error)
	UpdatePayslipPayment(ctx context.Context, id string, status PaymentStatus, paymentDate *time.Time) (Payslip, error)

	// Details
	CreatePayslipDetail(ctx context.Context, detail PayslipDetail) (PayslipDetail, error)
	GetPayslipDetails(ctx context.Context, payslipID string) ([]PayslipDetail, error)
}
