package employee

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

type EmployeeServiceImpl struct {
	txm              database.TxManager
	employeeRepo     employee.EmployeeRepository
	compensationRepo compensation.CompensationRepository
}

func NewEmployeeService(
	txm database.TxManager,
	employeeRepo employee.EmployeeRepository,
	compensationRepo compensation.CompensationRepository,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		txm:              txm,
		employeeRepo:     employeeRepo,
		compensationRepo: compensationRepo,
	}
}

func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp := employee.Employee{
		Code:        req.Code,
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Department:  req.Department,
		Position:    req.Position,
		BankName:    req.BankName,
		BankAccount: req.BankAccount,
		IsActive:    true,
	}
	if req.HireDate != nil {
		parsed, _ := time.Parse("2006-01-02", *req.HireDate)
		emp.HireDate = &parsed
	}

	var created employee.Employee
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.employeeRepo.Create(ctx, emp)
		if err != nil {
			return err
		}

		if req.BasicSalary != nil {
			start := time.Now()
			if created.HireDate != nil {
				start = *created.HireDate
			}
			_, err = s.compensationRepo.CreateSalary(ctx, compensation.SalaryRecord{
				EmployeeID:  created.ID,
				BasicSalary: *req.BasicSalary,
				Currency:    "USD",
				StartDate:   start,
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return mapToResponse(created), nil
}

func (s *EmployeeServiceImpl) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return mapToResponse(emp), nil
}

func (s *EmployeeServiceImpl) List(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	employees, totalCount, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	result := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		result = append(result, mapToResponse(emp))
	}

	return employee.ListEmployeeResponse{
		Data:       result,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// Update applies profile changes; when BasicSalary is set it also rotates
// the salary history, closing the open record as of today and opening a new
// one, so past payroll periods keep resolving to the old figure.
func (s *EmployeeServiceImpl) Update(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	var updated employee.Employee
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.employeeRepo.Update(ctx, req)
		if err != nil {
			return err
		}

		if req.BasicSalary == nil {
			return nil
		}

		salaries, err := s.compensationRepo.GetSalariesByEmployee(ctx, req.ID)
		if err != nil {
			return err
		}

		today := time.Now()
		if current, ok := compensation.ActiveSalary(salaries, today); ok {
			if current.BasicSalary.Equal(*req.BasicSalary) {
				return nil
			}
			if err := s.compensationRepo.CloseSalary(ctx, current.ID, today); err != nil {
				return err
			}
		}

		_, err = s.compensationRepo.CreateSalary(ctx, compensation.SalaryRecord{
			EmployeeID:  req.ID,
			BasicSalary: *req.BasicSalary,
			Currency:    "USD",
			StartDate:   today,
		})
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return mapToResponse(updated), nil
}

func (s *EmployeeServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.employeeRepo.GetByID(ctx, id); err != nil {
		return err
	}

	return s.employeeRepo.SoftDelete(ctx, id)
}

func mapToResponse(emp employee.Employee) employee.EmployeeResponse {
	var hireDate *string
	if emp.HireDate != nil {
		str := emp.HireDate.Format("2006-01-02")
		hireDate = &str
	}

	return employee.EmployeeResponse{
		ID:          emp.ID,
		Code:        emp.Code,
		FullName:    emp.FullName,
		Email:       emp.Email,
		Phone:       emp.Phone,
		Department:  emp.Department,
		Position:    emp.Position,
		BankName:    emp.BankName,
		BankAccount: emp.BankAccount,
		HireDate:    hireDate,
		IsActive:    emp.IsActive,
	}
}
