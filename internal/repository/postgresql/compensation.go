package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type compensationRepository struct {
	db *database.DB
}

func NewCompensationRepository(db *database.DB) compensation.CompensationRepository {
	return &compensationRepository{db: db}
}

// ========== SALARIES ==========

func (r *compensationRepository) CreateSalary(ctx context.Context, rec compensation.SalaryRecord) (compensation.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salaries (id, employee_id, basic_salary, currency, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, employee_id, basic_salary, currency, start_date, end_date, created_at, updated_at
	`

	var s compensation.SalaryRecord
	err := q.QueryRow(ctx, query,
		uuid.NewString(), rec.EmployeeID, rec.BasicSalary, rec.Currency, rec.StartDate, rec.EndDate,
	).Scan(
		&s.ID, &s.EmployeeID, &s.BasicSalary, &s.Currency, &s.StartDate, &s.EndDate,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return compensation.SalaryRecord{}, fmt.Errorf("failed to create salary record: %w", err)
	}

	return s, nil
}

func (r *compensationRepository) GetSalariesByEmployee(ctx context.Context, employeeID string) ([]compensation.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, basic_salary, currency, start_date, end_date, created_at, updated_at
		FROM salaries
		WHERE employee_id = $1
		ORDER BY start_date
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary records: %w", err)
	}
	defer rows.Close()

	var records []compensation.SalaryRecord
	for rows.Next() {
		var s compensation.SalaryRecord
		if err := rows.Scan(
			&s.ID, &s.EmployeeID, &s.BasicSalary, &s.Currency, &s.StartDate, &s.EndDate,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan salary record: %w", err)
		}
		records = append(records, s)
	}

	return records, nil
}

func (r *compensationRepository) CloseSalary(ctx context.Context, id string, endDate time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE salaries SET end_date = $2, updated_at = NOW() WHERE id = $1 RETURNING id`

	var closedID string
	err := q.QueryRow(ctx, query, id, endDate).Scan(&closedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return compensation.ErrSalaryNotFound
		}
		return fmt.Errorf("failed to close salary record: %w", err)
	}

	return nil
}

// ========== ADJUSTMENTS ==========

func (r *compensationRepository) CreateAdjustment(ctx context.Context, rec compensation.AdjustmentRecord) (compensation.AdjustmentRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO adjustments (id, employee_id, kind, category, amount, is_fixed, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, employee_id, kind, category, amount, is_fixed, start_date, end_date, created_at, updated_at
	`

	var a compensation.AdjustmentRecord
	err := q.QueryRow(ctx, query,
		uuid.NewString(), rec.EmployeeID, rec.Kind, rec.Category, rec.Amount, rec.IsFixed, rec.StartDate, rec.EndDate,
	).Scan(
		&a.ID, &a.EmployeeID, &a.Kind, &a.Category, &a.Amount, &a.IsFixed, &a.StartDate, &a.EndDate,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return compensation.AdjustmentRecord{}, fmt.Errorf("failed to create adjustment record: %w", err)
	}

	return a, nil
}

func (r *compensationRepository) GetAdjustmentsByEmployee(ctx context.Context, employeeID string) ([]compensation.AdjustmentRecord, error) {
	q := GetQuerier(ctx, r.db)

	// created_at ordering keeps settlement detail lines reproducible.
	query := `
		SELECT id, employee_id, kind, category, amount, is_fixed, start_date, end_date, created_at, updated_at
		FROM adjustments
		WHERE employee_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustment records: %w", err)
	}
	defer rows.Close()

	var records []compensation.AdjustmentRecord
	for rows.Next() {
		var a compensation.AdjustmentRecord
		if err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.Kind, &a.Category, &a.Amount, &a.IsFixed, &a.StartDate, &a.EndDate,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan adjustment record: %w", err)
		}
		records = append(records, a)
	}

	return records, nil
}

func (r *compensationRepository) CloseAdjustment(ctx context.Context, id string, endDate time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE adjustments SET end_date = $2, updated_at = NOW() WHERE id = $1 RETURNING id`

	var closedID string
	err := q.QueryRow(ctx, query, id, endDate).Scan(&closedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return compensation.ErrAdjustmentNotFound
		}
		return fmt.Errorf("failed to close adjustment record: %w", err)
	}

	return nil
}
