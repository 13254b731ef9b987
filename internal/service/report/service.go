package report

import (
	"context"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
}

func NewReportService(reportRepo report.ReportRepository) report.ReportService {
	return &ReportServiceImpl{reportRepo: reportRepo}
}

func (s *ReportServiceImpl) PayrollSummary(ctx context.Context, month, year int) (report.PayrollSummaryResponse, error) {
	if !validator.IsValidPeriod(month, year) {
		return report.PayrollSummaryResponse{}, validator.ValidationErrors{{Field: "period", Message: "month must be 1-12 and year 2000 or later"}}
	}

	return s.reportRepo.GetPayrollSummary(ctx, month, year)
}

func (s *ReportServiceImpl) DepartmentDistribution(ctx context.Context, month, year int) ([]report.DepartmentCost, error) {
	if !validator.IsValidPeriod(month, year) {
		return nil, validator.ValidationErrors{{Field: "period", Message: "month must be 1-12 and year 2000 or later"}}
	}

	return s.reportRepo.GetDepartmentDistribution(ctx, month, year)
}
