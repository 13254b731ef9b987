package payroll

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========== FAKES ==========

type fakeTxManager struct{}

func (f *fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]employee.Employee)}
}

func (r *fakeEmployeeRepo) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
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
	salaries    map[string][]compensation.SalaryRecord
	adjustments map[string][]compensation.AdjustmentRecord
}

func newFakeCompensationRepo() *fakeCompensationRepo {
	return &fakeCompensationRepo{
		salaries:    make(map[string][]compensation.SalaryRecord),
		adjustments: make(map[string][]compensation.AdjustmentRecord),
	}
}

func (r *fakeCompensationRepo) CreateSalary(ctx context.Context, rec compensation.SalaryRecord) (compensation.SalaryRecord, error) {
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
	r.adjustments[rec.EmployeeID] = append(r.adjustments[rec.EmployeeID], rec)
	return rec, nil
}

func (r *fakeCompensationRepo) GetAdjustmentsByEmployee(ctx context.Context, employeeID string) ([]compensation.AdjustmentRecord, error) {
	return r.adjustments[employeeID], nil
}

func (r *fakeCompensationRepo) CloseAdjustment(ctx context.Context, id string, endDate time.Time) error {
	for empID, records := range r.adjustments {
		for i, rec := range records {
			if rec.ID == id {
				records[i].EndDate = &endDate
				r.adjustments[empID] = records
				return nil
			}
		}
	}
	return compensation.ErrAdjustmentNotFound
}

type fakePayrollRepo struct {
	runs     map[string]payroll.PayrollRun
	payslips map[string]payroll.Payslip
	details  map[string][]payroll.PayslipDetail
	seq      int
}

func newFakePayrollRepo() *fakePayrollRepo {
	return &fakePayrollRepo{
		runs:     make(map[string]payroll.PayrollRun),
		payslips: make(map[string]payroll.Payslip),
		details:  make(map[string][]payroll.PayslipDetail),
	}
}

func (r *fakePayrollRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *fakePayrollRepo) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	for _, existing := range r.runs {
		if existing.EmployeeID == run.EmployeeID &&
			existing.PeriodMonth == run.PeriodMonth &&
			existing.PeriodYear == run.PeriodYear {
			return payroll.PayrollRun{}, payroll.ErrDuplicateRun
		}
	}
	run.ID = r.nextID("run")
	r.runs[run.ID] = run
	return run, nil
}

func (r *fakePayrollRepo) GetRunByID(ctx context.Context, id string) (payroll.PayrollRun, error) {
	run, ok := r.runs[id]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (r *fakePayrollRepo) GetRunByIDForUpdate(ctx context.Context, id string) (payroll.PayrollRun, error) {
	return r.GetRunByID(ctx, id)
}

func (r *fakePayrollRepo) ListRuns(ctx context.Context, filter payroll.RunFilter) ([]payroll.PayrollRun, int64, error) {
	var result []payroll.PayrollRun
	for _, run := range r.runs {
		result = append(result, run)
	}
	return result, int64(len(result)), nil
}

func (r *fakePayrollRepo) UpdateRunDeductions(ctx context.Context, id string, override, previewNet decimal.Decimal) (payroll.PayrollRun, error) {
	run, ok := r.runs[id]
	if !ok {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	run.DeductionsOverride = override
	run.NetSalary = previewNet
	r.runs[id] = run
	return run, nil
}

func (r *fakePayrollRepo) MarkRunProcessed(ctx context.Context, id string) error {
	run, ok := r.runs[id]
	if !ok {
		return payroll.ErrRunNotFound
	}
	run.Status = payroll.RunStatusProcessed
	r.runs[id] = run
	return nil
}

func (r *fakePayrollRepo) CreatePayslip(ctx context.Context, slip payroll.Payslip) (payroll.Payslip, error) {
	slip.ID = r.nextID("slip")
	r.payslips[slip.ID] = slip
	return slip, nil
}

func (r *fakePayrollRepo) GetPayslipByRunID(ctx context.Context, runID string) (payroll.Payslip, error) {
	for _, slip := range r.payslips {
		if slip.PayrollRunID == runID {
			return slip, nil
		}
	}
	return payroll.Payslip{}, payroll.ErrPayslipNotFound
}

func (r *fakePayrollRepo) GetPayslipByID(ctx context.Context, id string) (payroll.Payslip, error) {
	slip, ok := r.payslips[id]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	return slip, nil
}

func (r *fakePayrollRepo) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) ([]payroll.Payslip, int64, error) {
	var result []payroll.Payslip
	for _, slip := range r.payslips {
		result = append(result, slip)
	}
	return result, int64(len(result)), nil
}

func (r *fakePayrollRepo) UpdatePayslipPayment(ctx context.Context, id string, status payroll.PaymentStatus, paymentDate *time.Time) (payroll.Payslip, error) {
	slip, ok := r.payslips[id]
	if !ok {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}
	slip.PaymentStatus = status
	slip.PaymentDate = paymentDate
	r.payslips[id] = slip
	return slip, nil
}

func (r *fakePayrollRepo) CreatePayslipDetail(ctx context.Context, detail payroll.PayslipDetail) (payroll.PayslipDetail, error) {
	detail.ID = r.nextID("detail")
	r.details[detail.PayslipID] = append(r.details[detail.PayslipID], detail)
	return detail, nil
}

func (r *fakePayrollRepo) GetPayslipDetails(ctx context.Context, payslipID string) ([]payroll.PayslipDetail, error) {
	return r.details[payslipID], nil
}

// ========== FIXTURES ==========

func financeContext(t *testing.T) context.Context {
	t.Helper()

	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	_, tokenString, err := ja.Encode(map[string]interface{}{
		"user_id": "user-1",
		"role":    "finance",
		"type":    "access",
	})
	require.NoError(t, err)

	token, err := ja.Decode(tokenString)
	require.NoError(t, err)

	return jwtauth.NewContext(context.Background(), token, nil)
}

type fixture struct {
	svc          payroll.PayrollService
	payrollRepo  *fakePayrollRepo
	employeeRepo *fakeEmployeeRepo
	compRepo     *fakeCompensationRepo
}

func newFixture() *fixture {
	payrollRepo := newFakePayrollRepo()
	employeeRepo := newFakeEmployeeRepo()
	compRepo := newFakeCompensationRepo()

	return &fixture{
		svc:          NewPayrollService(&fakeTxManager{}, payrollRepo, employeeRepo, compRepo),
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		compRepo:     compRepo,
	}
}

func (f *fixture) addEmployee(id string, active bool) {
	f.employeeRepo.employees[id] = employee.Employee{
		ID:       id,
		Code:     "EMP-" + id,
		FullName: "Employee " + id,
		Email:    id + "@example.com",
		IsActive: active,
	}
}

func (f *fixture) addSalary(employeeID string, amount int64, start time.Time) {
	f.compRepo.salaries[employeeID] = append(f.compRepo.salaries[employeeID], compensation.SalaryRecord{
		ID:          fmt.Sprintf("sal-%s-%d", employeeID, len(f.compRepo.salaries[employeeID])),
		EmployeeID:  employeeID,
		BasicSalary: decimal.NewFromInt(amount),
		Currency:    "USD",
		StartDate:   start,
	})
}

func (f *fixture) addAdjustment(employeeID string, kind compensation.AdjustmentKind, category string, amount int64, start time.Time) {
	f.compRepo.adjustments[employeeID] = append(f.compRepo.adjustments[employeeID], compensation.AdjustmentRecord{
		ID:         fmt.Sprintf("adj-%s-%d", employeeID, len(f.compRepo.adjustments[employeeID])),
		EmployeeID: employeeID,
		Kind:       kind,
		Category:   category,
		Amount:     decimal.NewFromInt(amount),
		StartDate:  start,
	})
}

// ========== COMPUTATION ==========

func TestComputePayroll(t *testing.T) {
	t.Parallel()

	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("full breakdown with allowance and deduction", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", true)
		f.addSalary("e1", 2000, jan)
		f.addAdjustment("e1", compensation.AdjustmentKindAllowance, "Transport", 300, jan)
		f.addAdjustment("e1", compensation.AdjustmentKindDeduction, "Insurance", 50, jan)

		result, err := f.svc.ComputePayroll(context.Background(), "e1", 6, 2025)
		require.NoError(t, err)

		assert.True(t, result.BasicSalary.Equal(decimal.NewFromInt(2000)))
		assert.True(t, result.TotalAllowances.Equal(decimal.NewFromInt(300)))
		assert.True(t, result.TotalDeductions.Equal(decimal.NewFromInt(50)))
		assert.True(t, result.GrossSalary.Equal(decimal.NewFromInt(2300)), "gross = %s", result.GrossSalary)
		assert.True(t, result.Tax.Equal(decimal.NewFromInt(130)), "tax = %s", result.Tax)
		assert.True(t, result.NetSalary.Equal(decimal.NewFromInt(2120)), "net = %s", result.NetSalary)

		require.Len(t, result.Allowances, 1)
		assert.Equal(t, "Transport", result.Allowances[0].Category)
		require.Len(t, result.Deductions, 1)
		assert.Equal(t, "Insurance", result.Deductions[0].Category)
	})

	t.Run("top bracket", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", true)
		f.addSalary("e1", 6000, jan)

		result, err := f.svc.ComputePayroll(context.Background(), "e1", 6, 2025)
		require.NoError(t, err)

		assert.True(t, result.Tax.Equal(decimal.NewFromInt(700)), "tax = %s", result.Tax)
		assert.True(t, result.NetSalary.Equal(decimal.NewFromInt(5300)), "net = %s", result.NetSalary)
	})

	t.Run("unknown employee", func(t *testing.T) {
		t.Parallel()

		f := newFixture()

		_, err := f.svc.ComputePayroll(context.Background(), "ghost", 6, 2025)
		assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	})

	t.Run("no salary effective for the period", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", true)
		f.addSalary("e1", 2000, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

		_, err := f.svc.ComputePayroll(context.Background(), "e1", 6, 2025)
		assert.ErrorIs(t, err, compensation.ErrNoActiveSalary)
	})

	t.Run("salary resolved at period start not today", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", true)
		f.addSalary("e1", 2000, jan)
		f.addSalary("e1", 9000, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

		result, err := f.svc.ComputePayroll(context.Background(), "e1", 6, 2025)
		require.NoError(t, err)
		assert.True(t, result.BasicSalary.Equal(decimal.NewFromInt(2000)))
	})
}

// ========== RUNS ==========

func TestCreateDraftRun(t *testing.T) {
	t.Parallel()

	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("snapshots salary and previews net", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", true)
		f.addSalary("e1", 2000, jan)

		override := decimal.NewFromInt(100)
		result, err := f.svc.CreateDraftRun(financeContext(t), payroll.CreateRunRequest{
			EmployeeID:         "e1",
			PeriodMonth:        6,
			PeriodYear:         2025,
			DeductionsOverride: &override,
		})
		require.NoError(t, err)

		assert.Equal(t, "draft", result.Status)
		assert.Equal(t, "user-1", result.CreatedBy)
		assert.True(t, result.BasicSalary.Equal(decimal.NewFromInt(2000)))
		assert.True(t, result.NetSalary.Equal(decimal.NewFromInt(1900)), "preview net ignores allowances and tax")
	})

	t.Run("duplicate period is rejected", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", true)
		f.addSalary("e1", 2000, jan)

		req := payroll.CreateRunRequest{EmployeeID: "e1", PeriodMonth: 6, PeriodYear: 2025}
		_, err := f.svc.CreateDraftRun(financeContext(t), req)
		require.NoError(t, err)

		_, err = f.svc.CreateDraftRun(financeContext(t), req)
		assert.ErrorIs(t, err, payroll.ErrDuplicateRun)
	})

	t.Run("inactive employee is rejected", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", false)
		f.addSalary("e1", 2000, jan)

		_, err := f.svc.CreateDraftRun(financeContext(t), payroll.CreateRunRequest{
			EmployeeID: "e1", PeriodMonth: 6, PeriodYear: 2025,
		})
		assert.ErrorIs(t, err, employee.ErrEmployeeInactive)
	})

	t.Run("missing salary is rejected", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", true)

		_, err := f.svc.CreateDraftRun(financeContext(t), payroll.CreateRunRequest{
			EmployeeID: "e1", PeriodMonth: 6, PeriodYear: 2025,
		})
		assert.ErrorIs(t, err, compensation.ErrNoActiveSalary)
	})
}

func TestCreateBulkRuns(t *testing.T) {
	t.Parallel()

	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("failures do not roll back successes", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", true)
		f.addSalary("e1", 2000, jan)
		f.addEmployee("e2", true) // no salary
		f.addEmployee("e3", true)
		f.addSalary("e3", 3000, jan)

		result, err := f.svc.CreateBulkRuns(financeContext(t), payroll.CreateBulkRunsRequest{
			PeriodMonth: 6, PeriodYear: 2025,
		})
		require.NoError(t, err)

		assert.Equal(t, 2, result.CreatedCount)
		assert.Equal(t, 0, result.SkippedCount)
		assert.Equal(t, 1, result.ErrorCount)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "no active salary")
		assert.Len(t, f.payrollRepo.runs, 2)
	})

	t.Run("existing runs are skipped not errored", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", true)
		f.addSalary("e1", 2000, jan)

		_, err := f.svc.CreateDraftRun(financeContext(t), payroll.CreateRunRequest{
			EmployeeID: "e1", PeriodMonth: 6, PeriodYear: 2025,
		})
		require.NoError(t, err)

		result, err := f.svc.CreateBulkRuns(financeContext(t), payroll.CreateBulkRunsRequest{
			PeriodMonth: 6, PeriodYear: 2025,
		})
		require.NoError(t, err)

		assert.Equal(t, 0, result.CreatedCount)
		assert.Equal(t, 1, result.SkippedCount)
		assert.Equal(t, 0, result.ErrorCount)
	})
}

func TestUpdateDraftRun(t *testing.T) {
	t.Parallel()

	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("recomputes preview net", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", true)
		f.addSalary("e1", 2000, jan)

		created, err := f.svc.CreateDraftRun(financeContext(t), payroll.CreateRunRequest{
			EmployeeID: "e1", PeriodMonth: 6, PeriodYear: 2025,
		})
		require.NoError(t, err)

		updated, err := f.svc.UpdateDraftRun(context.Background(), payroll.UpdateRunRequest{
			ID:                 created.ID,
			DeductionsOverride: decimal.NewFromInt(250),
		})
		require.NoError(t, err)

		assert.True(t, updated.DeductionsOverride.Equal(decimal.NewFromInt(250)))
		assert.True(t, updated.NetSalary.Equal(decimal.NewFromInt(1750)))
	})

	t.Run("processed run cannot be edited", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", true)
		f.addSalary("e1", 2000, jan)

		created, err := f.svc.CreateDraftRun(financeContext(t), payroll.CreateRunRequest{
			EmployeeID: "e1", PeriodMonth: 6, PeriodYear: 2025,
		})
		require.NoError(t, err)

		_, err = f.svc.SettleRun(context.Background(), created.ID)
		require.NoError(t, err)

		_, err = f.svc.UpdateDraftRun(context.Background(), payroll.UpdateRunRequest{
			ID:                 created.ID,
			DeductionsOverride: decimal.NewFromInt(250),
		})
		assert.ErrorIs(t, err, payroll.ErrInvalidRunState)
	})
}

// ========== SETTLEMENT ==========

func TestSettleRun(t *testing.T) {
	t.Parallel()

	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*fixture, string) {
		t.Helper()

		f := newFixture()
		f.addEmployee("e1", true)
		f.addSalary("e1", 2000, jan)
		f.addAdjustment("e1", compensation.AdjustmentKindAllowance, "Transport", 300, jan)
		f.addAdjustment("e1", compensation.AdjustmentKindDeduction, "Insurance", 50, jan)

		created, err := f.svc.CreateDraftRun(financeContext(t), payroll.CreateRunRequest{
			EmployeeID: "e1", PeriodMonth: 6, PeriodYear: 2025,
		})
		require.NoError(t, err)

		return f, created.ID
	}

	t.Run("creates payslip with detail lines", func(t *testing.T) {
		t.Parallel()

		f, runID := setup(t)

		result, err := f.svc.SettleRun(context.Background(), runID)
		require.NoError(t, err)
		assert.Equal(t, "processed", result.Status)

		slip, err := f.payrollRepo.GetPayslipByRunID(context.Background(), runID)
		require.NoError(t, err)
		assert.True(t, slip.GrossSalary.Equal(decimal.NewFromInt(2300)))
		assert.True(t, slip.Tax.Equal(decimal.NewFromInt(130)))
		assert.True(t, slip.TotalDeductions.Equal(decimal.NewFromInt(50)))
		assert.True(t, slip.NetSalary.Equal(decimal.NewFromInt(2120)))
		assert.Equal(t, payroll.PaymentStatusPending, slip.PaymentStatus)

		details := f.payrollRepo.details[slip.ID]
		require.Len(t, details, 3)
		assert.Equal(t, payroll.DetailKindAllowance, details[0].Kind)
		assert.Equal(t, "Transport", details[0].Description)
		assert.Equal(t, payroll.DetailKindDeduction, details[1].Kind)
		assert.Equal(t, "Insurance", details[1].Description)
		assert.Equal(t, payroll.DetailKindDeduction, details[2].Kind)
		assert.Equal(t, "Income Tax", details[2].Description)
		assert.True(t, details[2].Amount.Equal(decimal.NewFromInt(130)))
	})

	t.Run("override joins adjustment deductions", func(t *testing.T) {
		t.Parallel()

		f, runID := setup(t)

		_, err := f.svc.UpdateDraftRun(context.Background(), payroll.UpdateRunRequest{
			ID:                 runID,
			DeductionsOverride: decimal.NewFromInt(100),
		})
		require.NoError(t, err)

		_, err = f.svc.SettleRun(context.Background(), runID)
		require.NoError(t, err)

		slip, err := f.payrollRepo.GetPayslipByRunID(context.Background(), runID)
		require.NoError(t, err)
		assert.True(t, slip.TotalDeductions.Equal(decimal.NewFromInt(150)))
		assert.True(t, slip.NetSalary.Equal(decimal.NewFromInt(2020)))

		// The override contributes to the totals but never gets its own line.
		details := f.payrollRepo.details[slip.ID]
		require.Len(t, details, 3)
	})

	t.Run("no income tax line when tax is zero", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.addEmployee("e1", true)
		f.addSalary("e1", 900, jan)

		created, err := f.svc.CreateDraftRun(financeContext(t), payroll.CreateRunRequest{
			EmployeeID: "e1", PeriodMonth: 6, PeriodYear: 2025,
		})
		require.NoError(t, err)

		_, err = f.svc.SettleRun(context.Background(), created.ID)
		require.NoError(t, err)

		slip, err := f.payrollRepo.GetPayslipByRunID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.True(t, slip.Tax.IsZero())
		assert.Empty(t, f.payrollRepo.details[slip.ID])
	})

	t.Run("existing payslip on a draft run is kept untouched", func(t *testing.T) {
		t.Parallel()

		f, runID := setup(t)

		// A payslip already recorded for the run, e.g. left behind by a
		// settlement that failed after payslip creation and was retried.
		seeded, err := f.payrollRepo.CreatePayslip(context.Background(), payroll.Payslip{
			PayrollRunID:    runID,
			EmployeeID:      "e1",
			BasicSalary:     decimal.NewFromInt(2000),
			TotalAllowances: decimal.NewFromInt(300),
			TotalDeductions: decimal.NewFromInt(50),
			GrossSalary:     decimal.NewFromInt(2300),
			Tax:             decimal.NewFromInt(130),
			NetSalary:       decimal.NewFromInt(2120),
			PaymentStatus:   payroll.PaymentStatusPending,
		})
		require.NoError(t, err)

		result, err := f.svc.SettleRun(context.Background(), runID)
		require.NoError(t, err)
		assert.Equal(t, "processed", result.Status)

		// Still exactly the seeded payslip; no second one, no detail lines.
		assert.Len(t, f.payrollRepo.payslips, 1)
		slip, err := f.payrollRepo.GetPayslipByRunID(context.Background(), runID)
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, slip.ID)
		assert.True(t, slip.NetSalary.Equal(decimal.NewFromInt(2120)))
		assert.Empty(t, f.payrollRepo.details[seeded.ID])
	})

	t.Run("second settlement is rejected", func(t *testing.T) {
		t.Parallel()

		f, runID := setup(t)

		_, err := f.svc.SettleRun(context.Background(), runID)
		require.NoError(t, err)

		_, err = f.svc.SettleRun(context.Background(), runID)
		assert.ErrorIs(t, err, payroll.ErrInvalidRunState)

		// Still exactly one payslip with its original details.
		assert.Len(t, f.payrollRepo.payslips, 1)
	})

	t.Run("uses snapshot basic not current salary", func(t *testing.T) {
		t.Parallel()

		f, runID := setup(t)

		// Raise after the run was drafted. The settled payslip must keep
		// computing from the snapshot taken at creation.
		f.addSalary("e1", 9000, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

		_, err := f.svc.SettleRun(context.Background(), runID)
		require.NoError(t, err)

		slip, err := f.payrollRepo.GetPayslipByRunID(context.Background(), runID)
		require.NoError(t, err)
		assert.True(t, slip.BasicSalary.Equal(decimal.NewFromInt(2000)))
		assert.True(t, slip.GrossSalary.Equal(decimal.NewFromInt(2300)))
	})

	t.Run("unknown run", func(t *testing.T) {
		t.Parallel()

		f := newFixture()

		_, err := f.svc.SettleRun(context.Background(), "missing")
		assert.ErrorIs(t, err, payroll.ErrRunNotFound)
	})
}

// ========== PAYSLIPS ==========

func TestMarkPayslipPaid(t *testing.T) {
	t.Parallel()

	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	f := newFixture()
	f.addEmployee("e1", true)
	f.addSalary("e1", 2000, jan)

	created, err := f.svc.CreateDraftRun(financeContext(t), payroll.CreateRunRequest{
		EmployeeID: "e1", PeriodMonth: 6, PeriodYear: 2025,
	})
	require.NoError(t, err)

	_, err = f.svc.SettleRun(context.Background(), created.ID)
	require.NoError(t, err)

	slip, err := f.payrollRepo.GetPayslipByRunID(context.Background(), created.ID)
	require.NoError(t, err)

	paymentDate := "2025-07-05"
	result, err := f.svc.MarkPayslipPaid(context.Background(), payroll.MarkPayslipPaidRequest{
		ID:          slip.ID,
		PaymentDate: &paymentDate,
	})
	require.NoError(t, err)

	assert.Equal(t, "paid", result.PaymentStatus)
	require.NotNil(t, result.PaymentDate)
	assert.Equal(t, "2025-07-05", *result.PaymentDate)
}

func TestMarkPayslipPaidRejectsMalformedDate(t *testing.T) {
	t.Parallel()

	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	f := newFixture()
	f.addEmployee("e1", true)
	f.addSalary("e1", 2000, jan)

	created, err := f.svc.CreateDraftRun(financeContext(t), payroll.CreateRunRequest{
		EmployeeID: "e1", PeriodMonth: 6, PeriodYear: 2025,
	})
	require.NoError(t, err)

	_, err = f.svc.SettleRun(context.Background(), created.ID)
	require.NoError(t, err)

	slip, err := f.payrollRepo.GetPayslipByRunID(context.Background(), created.ID)
	require.NoError(t, err)

	badDate := "05-07-2025"
	_, err = f.svc.MarkPayslipPaid(context.Background(), payroll.MarkPayslipPaidRequest{
		ID:          slip.ID,
		PaymentDate: &badDate,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment_date")

	// The payslip stays pending; nothing was written on the failed request.
	unchanged, err := f.payrollRepo.GetPayslipByID(context.Background(), slip.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.PaymentStatusPending, unchanged.PaymentStatus)
	assert.Nil(t, unchanged.PaymentDate)
}
