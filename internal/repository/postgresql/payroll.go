package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== RUNS ==========

const runColumns = `pr.id, pr.employee_id, pr.period_month, pr.period_year, pr.basic_salary,
	pr.deductions_override, pr.net_salary, pr.status, pr.created_by, pr.created_at, pr.updated_at`

func scanRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	err := row.Scan(
		&run.ID, &run.EmployeeID, &run.PeriodMonth, &run.PeriodYear, &run.BasicSalary,
		&run.DeductionsOverride, &run.NetSalary, &run.Status, &run.CreatedBy,
		&run.CreatedAt, &run.UpdatedAt,
	)
	return run, err
}

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		INSERT INTO payroll_runs AS pr (id, employee_id, period_month, period_year, basic_salary,
			deductions_override, net_salary, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s
	`, runColumns)

	created, err := scanRun(q.QueryRow(ctx, query,
		uuid.NewString(), run.EmployeeID, run.PeriodMonth, run.PeriodYear, run.BasicSalary,
		run.DeductionsOverride, run.NetSalary, run.Status, run.CreatedBy,
	))
	if err != nil {
		if isUniqueViolation(err, "uk_payroll_runs_employee_period") {
			return payroll.PayrollRun{}, payroll.ErrDuplicateRun
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetRunByID(ctx context.Context, id string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM payroll_runs pr WHERE pr.id = $1`, runColumns)

	run, err := scanRun(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) GetRunByIDForUpdate(ctx context.Context, id string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	// Row lock serializes concurrent settlements of the same run; the lock
	// is held until the surrounding transaction ends.
	query := fmt.Sprintf(`SELECT %s FROM payroll_runs pr WHERE pr.id = $1 FOR UPDATE`, runColumns)

	run, err := scanRun(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to lock payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) ListRuns(ctx context.Context, filter payroll.RunFilter) ([]payroll.PayrollRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.PeriodMonth != nil {
		where = append(where, fmt.Sprintf("pr.period_month = $%d", argIdx))
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		where = append(where, fmt.Sprintf("pr.period_year = $%d", argIdx))
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("pr.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		where = append(where, fmt.Sprintf("pr.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM payroll_runs pr WHERE %s`, whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, e.full_name
		FROM payroll_runs pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE %s
		ORDER BY pr.period_year DESC, pr.period_month DESC, e.full_name
		LIMIT $%d OFFSET $%d
	`, runColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		var run payroll.PayrollRun
		if err := rows.Scan(
			&run.ID, &run.EmployeeID, &run.PeriodMonth, &run.PeriodYear, &run.BasicSalary,
			&run.DeductionsOverride, &run.NetSalary, &run.Status, &run.CreatedBy,
			&run.CreatedAt, &run.UpdatedAt, &run.EmployeeName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, total, nil
}

func (r *payrollRepository) UpdateRunDeductions(ctx context.Context, id string, override, previewNet decimal.Decimal) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE payroll_runs pr
		SET deductions_override = $2, net_salary = $3, updated_at = NOW()
		WHERE pr.id = $1
		RETURNING %s
	`, runColumns)

	run, err := scanRun(q.QueryRow(ctx, query, id, override, previewNet))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to update payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) MarkRunProcessed(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE payroll_runs SET status = 'processed', updated_at = NOW() WHERE id = $1 RETURNING id`

	var updatedID string
	err := q.QueryRow(ctx, query, id).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrRunNotFound
		}
		return fmt.Errorf("failed to mark payroll run processed: %w", err)
	}

	return nil
}

// ========== PAYSLIPS ==========

const payslipColumns = `ps.id, ps.payroll_run_id, ps.employee_id, ps.basic_salary, ps.total_allowances,
	ps.total_deductions, ps.gross_salary, ps.tax, ps.net_salary, ps.payment_status, ps.payment_date,
	ps.notes, ps.created_at, ps.updated_at`

func scanPayslip(row pgx.Row) (payroll.Payslip, error) {
	var slip payroll.Payslip
	err := row.Scan(
		&slip.ID, &slip.PayrollRunID, &slip.EmployeeID, &slip.BasicSalary, &slip.TotalAllowances,
		&slip.TotalDeductions, &slip.GrossSalary, &slip.Tax, &slip.NetSalary, &slip.PaymentStatus,
		&slip.PaymentDate, &slip.Notes, &slip.CreatedAt, &slip.UpdatedAt,
	)
	return slip, err
}

func (r *payrollRepository) CreatePayslip(ctx context.Context, slip payroll.Payslip) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		INSERT INTO payslips AS ps (id, payroll_run_id, employee_id, basic_salary, total_allowances,
			total_deductions, gross_salary, tax, net_salary, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s
	`, payslipColumns)

	created, err := scanPayslip(q.QueryRow(ctx, query,
		uuid.NewString(), slip.PayrollRunID, slip.EmployeeID, slip.BasicSalary, slip.TotalAllowances,
		slip.TotalDeductions, slip.GrossSalary, slip.Tax, slip.NetSalary, slip.PaymentStatus,
	))
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to create payslip: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetPayslipByRunID(ctx context.Context, runID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM payslips ps WHERE ps.payroll_run_id = $1`, payslipColumns)

	slip, err := scanPayslip(q.QueryRow(ctx, query, runID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip by run: %w", err)
	}

	return slip, nil
}

func (r *payrollRepository) GetPayslipByID(ctx context.Context, id string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM payslips ps WHERE ps.id = $1`, payslipColumns)

	slip, err := scanPayslip(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return slip, nil
}

func (r *payrollRepository) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		where = append(where, fmt.Sprintf("ps.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.PeriodMonth != nil {
		where = append(where, fmt.Sprintf("pr.period_month = $%d", argIdx))
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		where = append(where, fmt.Sprintf("pr.period_year = $%d", argIdx))
		args = append(args, *filter.PeriodYear)
		argIdx++
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM payslips ps
		JOIN payroll_runs pr ON ps.payroll_run_id = pr.id
		WHERE %s
	`, whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payslips: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM payslips ps
		JOIN payroll_runs pr ON ps.payroll_run_id = pr.id
		WHERE %s
		ORDER BY pr.period_year DESC, pr.period_month DESC, ps.created_at DESC
		LIMIT $%d OFFSET $%d
	`, payslipColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var slips []payroll.Payslip
	for rows.Next() {
		slip, err := scanPayslip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payslip: %w", err)
		}
		slips = append(slips, slip)
	}

	return slips, total, nil
}

func (r *payrollRepository) UpdatePayslipPayment(ctx context.Context, id string, status payroll.PaymentStatus, paymentDate *time.Time) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE payslips ps
		SET payment_status = $2, payment_date = $3, updated_at = NOW()
		WHERE ps.id = $1
		RETURNING %s
	`, payslipColumns)

	slip, err := scanPayslip(q.QueryRow(ctx, query, id, status, paymentDate))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to update payslip payment: %w", err)
	}

	return slip, nil
}

// ========== DETAILS ==========

func (r *payrollRepository) CreatePayslipDetail(ctx context.Context, detail payroll.PayslipDetail) (payroll.PayslipDetail, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payslip_details (id, payslip_id, kind, description, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, payslip_id, kind, description, amount, created_at
	`

	var d payroll.PayslipDetail
	err := q.QueryRow(ctx, query,
		uuid.NewString(), detail.PayslipID, detail.Kind, detail.Description, detail.Amount,
	).Scan(
		&d.ID, &d.PayslipID, &d.Kind, &d.Description, &d.Amount, &d.CreatedAt,
	)
	if err != nil {
		return payroll.PayslipDetail{}, fmt.Errorf("failed to create payslip detail: %w", err)
	}

	return d, nil
}

func (r *payrollRepository) GetPayslipDetails(ctx context.Context, payslipID string) ([]payroll.PayslipDetail, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, payslip_id, kind, description, amount, created_at
		FROM payslip_details
		WHERE payslip_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, payslipID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip details: %w", err)
	}
	defer rows.Close()

	var details []payroll.PayslipDetail
	for rows.Next() {
		var d payroll.PayslipDetail
		if err := rows.Scan(&d.ID, &d.PayslipID, &d.Kind, &d.Description, &d.Amount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payslip detail: %w", err)
		}
		details = append(details, d)
	}

	return details, nil
}
