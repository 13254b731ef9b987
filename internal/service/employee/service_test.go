package employee

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTxManager struct{}

func (f *fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
	seq       int
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]employee.Employee)}
}

func (r *fakeEmployeeRepo) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	r.seq++
	emp.ID = fmt.Sprintf("emp-%d", r.seq)
	r.employees[emp.ID] = emp
	return emp, nil
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *fakeEmployeeRepo) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	var result []employee.Employee
	for _, emp := range r.employees {
		result = append(result, emp)
	}
	return result, int64(len(result)), nil
}

func (r *fakeEmployeeRepo) GetActive(ctx context.Context) ([]employee.Employee, error) {
	var result []employee.Employee
	for _, emp := range r.employees {
		if emp.IsActive {
			result = append(result, emp)
		}
	}
	return result, nil
}

func (r *fakeEmployeeRepo) Update(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.Employee, error) {
	emp, ok := r.employees[req.ID]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	if req.FullName != nil {
		emp.FullName = *req.FullName
	}
	r.employees[req.ID] = emp
	return emp, nil
}

func (r *fakeEmployeeRepo) SoftDelete(ctx context.Context, id string) error {
	emp, ok := r.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	emp.IsActive = false
	r.employees[id] = emp
	return nil
}

type fakeCompensationRepo struct {
	salaries map[string][]compensation.SalaryRecord
	seq      int
}

func newFakeCompensationRepo() *fakeCompensationRepo {
	return &fakeCompensationRepo{salaries: make(map[string][]compensation.SalaryRecord)}
}

func (r *fakeCompensationRepo) CreateSalary(ctx context.Context, rec compensation.SalaryRecord) (compensation.SalaryRecord, error) {
	r.seq++
	rec.ID = fmt.Sprintf("sal-%d", r.seq)
	r.salaries[rec.EmployeeID] = append(r.salaries[rec.EmployeeID], rec)
	return rec, nil
}

func (r *fakeCompensationRepo) GetSalariesByEmployee(ctx context.Context, employeeID string) ([]compensation.SalaryRecord, error) {
	return r.salaries[employeeID], nil
}

func (r *fakeCompensationRepo) CloseSalary(ctx context.Context, id string, endDate time.Time) error {
	for empID, records := range r.salaries {
		for i, rec := range records {
			if rec.ID == id {
				records[i].EndDate = &endDate
				r.salaries[empID] = records
				return nil
			}
		}
	}
	return compensation.ErrSalaryNotFound
}

func (r *fakeCompensationRepo) CreateAdjustment(ctx context.Context, rec compensation.AdjustmentRecord) (compensation.AdjustmentRecord, error) {
	return rec, nil
}

func (r *fakeCompensationRepo) GetAdjustmentsByEmployee(ctx context.Context, employeeID string) ([]compensation.AdjustmentRecord, error) {
	return nil, nil
}

func (r *fakeCompensationRepo) CloseAdjustment(ctx context.Context, id string, endDate time.Time) error {
	return nil
}

func TestCreateEmployee(t *testing.T) {
	t.Parallel()

	t.Run("with initial salary", func(t *testing.T) {
		t.Parallel()

		empRepo := newFakeEmployeeRepo()
		compRepo := newFakeCompensationRepo()
		svc := NewEmployeeService(&fakeTxManager{}, empRepo, compRepo)

		salary := decimal.NewFromInt(2500)
		result, err := svc.Create(context.Background(), employee.CreateEmployeeRequest{
			Code:        "EMP-001",
			FullName:    "Jordan Smith",
			Email:       "jordan@example.com",
			BasicSalary: &salary,
		})
		require.NoError(t, err)
		assert.True(t, result.IsActive)

		records := compRepo.salaries[result.ID]
		require.Len(t, records, 1)
		assert.True(t, records[0].BasicSalary.Equal(salary))
		assert.Nil(t, records[0].EndDate)
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		t.Parallel()

		svc := NewEmployeeService(&fakeTxManager{}, newFakeEmployeeRepo(), newFakeCompensationRepo())

		_, err := svc.Create(context.Background(), employee.CreateEmployeeRequest{
			Code:     "EMP-001",
			FullName: "Jordan Smith",
			Email:    "nope",
		})
		assert.Error(t, err)
	})
}

func TestUpdateEmployeeSalaryRotation(t *testing.T) {
	t.Parallel()

	t.Run("closes current record and opens a new one", func(t *testing.T) {
		t.Parallel()

		empRepo := newFakeEmployeeRepo()
		compRepo := newFakeCompensationRepo()
		svc := NewEmployeeService(&fakeTxManager{}, empRepo, compRepo)

		initial := decimal.NewFromInt(2000)
		created, err := svc.Create(context.Background(), employee.CreateEmployeeRequest{
			Code:        "EMP-001",
			FullName:    "Jordan Smith",
			Email:       "jordan@example.com",
			BasicSalary: &initial,
		})
		require.NoError(t, err)

		raised := decimal.NewFromInt(2600)
		_, err = svc.Update(context.Background(), employee.UpdateEmployeeRequest{
			ID:          created.ID,
			BasicSalary: &raised,
		})
		require.NoError(t, err)

		records := compRepo.salaries[created.ID]
		require.Len(t, records, 2)
		assert.NotNil(t, records[0].EndDate, "previous record must be closed")
		assert.Nil(t, records[1].EndDate, "new record stays open")
		assert.True(t, records[1].BasicSalary.Equal(raised))
	})

	t.Run("same amount does not rotate", func(t *testing.T) {
		t.Parallel()

		empRepo := newFakeEmployeeRepo()
		compRepo := newFakeCompensationRepo()
		svc := NewEmployeeService(&fakeTxManager{}, empRepo, compRepo)

		initial := decimal.NewFromInt(2000)
		created, err := svc.Create(context.Background(), employee.CreateEmployeeRequest{
			Code:        "EMP-001",
			FullName:    "Jordan Smith",
			Email:       "jordan@example.com",
			BasicSalary: &initial,
		})
		require.NoError(t, err)

		same := decimal.NewFromInt(2000)
		_, err = svc.Update(context.Background(), employee.UpdateEmployeeRequest{
			ID:          created.ID,
			BasicSalary: &same,
		})
		require.NoError(t, err)

		records := compRepo.salaries[created.ID]
		require.Len(t, records, 1)
		assert.Nil(t, records[0].EndDate)
	})

	t.Run("update without salary leaves history untouched", func(t *testing.T) {
		t.Parallel()

		empRepo := newFakeEmployeeRepo()
		compRepo := newFakeCompensationRepo()
		svc := NewEmployeeService(&fakeTxManager{}, empRepo, compRepo)

		initial := decimal.NewFromInt(2000)
		created, err := svc.Create(context.Background(), employee.CreateEmployeeRequest{
			Code:        "EMP-001",
			FullName:    "Jordan Smith",
			Email:       "jordan@example.com",
			BasicSalary: &initial,
		})
		require.NoError(t, err)

		name := "Jordan S. Smith"
		_, err = svc.Update(context.Background(), employee.UpdateEmployeeRequest{
			ID:       created.ID,
			FullName: &name,
		})
		require.NoError(t, err)

		require.Len(t, compRepo.salaries[created.ID], 1)
	})
}
