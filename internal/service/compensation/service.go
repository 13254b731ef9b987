package compensation

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type CompensationServiceImpl struct {
	txm              database.TxManager
	compensationRepo compensation.CompensationRepository
	employeeRepo     employee.EmployeeRepository
}

func NewCompensationService(
	txm database.TxManager,
	compensationRepo compensation.CompensationRepository,
	employeeRepo employee.EmployeeRepository,
) compensation.CompensationService {
	return &CompensationServiceImpl{
		txm:              txm,
		compensationRepo: compensationRepo,
		employeeRepo:     employeeRepo,
	}
}

// CreateSalary opens a new salary record. The previous open record is closed
// as of the new record's start date so the history stays non-overlapping.
func (s *CompensationServiceImpl) CreateSalary(ctx context.Context, req compensation.CreateSalaryRequest) (compensation.SalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return compensation.SalaryResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return compensation.SalaryResponse{}, err
	}

	start := time.Now()
	if req.StartDate != nil {
		start, _ = time.Parse("2006-01-02", *req.StartDate)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	var created compensation.SalaryRecord
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		salaries, err := s.compensationRepo.GetSalariesByEmployee(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		if current, ok := compensation.ActiveSalary(salaries, start); ok {
			if err := s.compensationRepo.CloseSalary(ctx, current.ID, start); err != nil {
				return err
			}
		}

		created, err = s.compensationRepo.CreateSalary(ctx, compensation.SalaryRecord{
			EmployeeID:  req.EmployeeID,
			BasicSalary: req.BasicSalary,
			Currency:    currency,
			StartDate:   start,
		})
		return err
	})
	if err != nil {
		return compensation.SalaryResponse{}, err
	}

	return mapToSalaryResponse(created), nil
}

func (s *CompensationServiceImpl) ListSalaries(ctx context.Context, employeeID string) ([]compensation.SalaryResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	records, err := s.compensationRepo.GetSalariesByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	result := make([]compensation.SalaryResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, mapToSalaryResponse(rec))
	}

	return result, nil
}

func (s *CompensationServiceImpl) CreateAdjustment(ctx context.Context, req compensation.CreateAdjustmentRequest) (compensation.AdjustmentResponse, error) {
	if err := req.Validate(); err != nil {
		return compensation.AdjustmentResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return compensation.AdjustmentResponse{}, err
	}

	start := time.Now()
	if req.StartDate != nil {
		start, _ = time.Parse("2006-01-02", *req.StartDate)
	}

	var endDate *time.Time
	if req.EndDate != nil {
		parsed, _ := time.Parse("2006-01-02", *req.EndDate)
		endDate = &parsed
	}

	isFixed := true
	if req.IsFixed != nil {
		isFixed = *req.IsFixed
	}

	created, err := s.compensationRepo.CreateAdjustment(ctx, compensation.AdjustmentRecord{
		EmployeeID: req.EmployeeID,
		Kind:       compensation.AdjustmentKind(req.Kind),
		Category:   req.Category,
		Amount:     req.Amount,
		IsFixed:    isFixed,
		StartDate:  start,
		EndDate:    endDate,
	})
	if err != nil {
		return compensation.AdjustmentResponse{}, err
	}

	return mapToAdjustmentResponse(created), nil
}

func (s *CompensationServiceImpl) ListAdjustments(ctx context.Context, employeeID string) ([]compensation.AdjustmentResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	records, err := s.compensationRepo.GetAdjustmentsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	result := make([]compensation.AdjustmentResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, mapToAdjustmentResponse(rec))
	}

	return result, nil
}

func (s *CompensationServiceImpl) CloseAdjustment(ctx context.Context, id string, endDate string) error {
	end, ok := validator.IsValidDate(endDate)
	if !ok {
		return validator.ValidationErrors{{Field: "end_date", Message: "must be in YYYY-MM-DD format"}}
	}

	return s.compensationRepo.CloseAdjustment(ctx, id, end)
}

func mapToSalaryResponse(rec compensation.SalaryRecord) compensation.SalaryResponse {
	var endDate *string
	if rec.EndDate != nil {
		str := rec.EndDate.Format("2006-01-02")
		endDate = &str
	}

	return compensation.SalaryResponse{
		ID:          rec.ID,
		EmployeeID:  rec.EmployeeID,
		BasicSalary: rec.BasicSalary,
		Currency:    rec.Currency,
		StartDate:   rec.StartDate.Format("2006-01-02"),
		EndDate:     endDate,
	}
}

func mapToAdjustmentResponse(rec compensation.AdjustmentRecord) compensation.AdjustmentResponse {
	var endDate *string
	if rec.EndDate != nil {
		str := rec.EndDate.Format("2006-01-02")
		endDate = &str
	}

	return compensation.AdjustmentResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		Kind:       string(rec.Kind),
		Category:   rec.Category,
		Amount:     rec.Amount,
		IsFixed:    rec.IsFixed,
		StartDate:  rec.StartDate.Format("2006-01-02"),
		EndDate:    endDate,
	}
}
