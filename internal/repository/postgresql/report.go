package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

type reportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetPayrollSummary(ctx context.Context, month, year int) (report.PayrollSummaryResponse, error) {
	q := GetQuerier(ctx, r.db)

	summary := report.PayrollSummaryResponse{PeriodMonth: month, PeriodYear: year}

	query := `
		SELECT COUNT(ps.id),
			   COALESCE(SUM(ps.basic_salary), 0),
			   COALESCE(SUM(ps.total_allowances), 0),
			   COALESCE(SUM(ps.total_deductions), 0),
			   COALESCE(SUM(ps.gross_salary), 0),
			   COALESCE(SUM(ps.tax), 0),
			   COALESCE(SUM(ps.net_salary), 0)
		FROM payslips ps
		JOIN payroll_runs pr ON ps.payroll_run_id = pr.id
		WHERE pr.period_month = $1 AND pr.period_year = $2
	`
	err := q.QueryRow(ctx, query, month, year).Scan(
		&summary.EmployeeCount, &summary.TotalBasic, &summary.TotalAllowances,
		&summary.TotalDeductions, &summary.TotalGross, &summary.TotalTax, &summary.TotalNet,
	)
	if err != nil {
		return report.PayrollSummaryResponse{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}

	statusQuery := `
		SELECT COUNT(*) FILTER (WHERE status = 'draft'),
			   COUNT(*) FILTER (WHERE status = 'processed')
		FROM payroll_runs
		WHERE period_month = $1 AND period_year = $2
	`
	err = q.QueryRow(ctx, statusQuery, month, year).Scan(&summary.DraftRuns, &summary.ProcessedRuns)
	if err != nil {
		return report.PayrollSummaryResponse{}, fmt.Errorf("failed to get run status counts: %w", err)
	}

	return summary, nil
}

func (r *reportRepository) GetDepartmentDistribution(ctx context.Context, month, year int) ([]report.DepartmentCost, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(e.department, 'Unassigned'),
			   COUNT(DISTINCT ps.employee_id),
			   COALESCE(SUM(ps.net_salary), 0)
		FROM payslips ps
		JOIN payroll_runs pr ON ps.payroll_run_id = pr.id
		JOIN employees e ON ps.employee_id = e.id
		WHERE pr.period_month = $1 AND pr.period_year = $2
		GROUP BY COALESCE(e.department, 'Unassigned')
		ORDER BY 3 DESC
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get department distribution: %w", err)
	}
	defer rows.Close()

	var costs []report.DepartmentCost
	for rows.Next() {
		var c report.DepartmentCost
		if err := rows.Scan(&c.Department, &c.EmployeeCount, &c.TotalNet); err != nil {
			return nil, fmt.Errorf("failed to scan department cost: %w", err)
		}
		costs = append(costs, c)
	}

	return costs, nil
}
