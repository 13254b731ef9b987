package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	txm              database.TxManager
	payrollRepo      payroll.PayrollRepository
	employeeRepo     employee.EmployeeRepository
	compensationRepo compensation.CompensationRepository
}

func NewPayrollService(
	txm database.TxManager,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	compensationRepo compensation.CompensationRepository,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		txm:              txm,
		payrollRepo:      payrollRepo,
		employeeRepo:     employeeRepo,
		compensationRepo: compensationRepo,
	}
}

// Helper to get the acting user from JWT context
func actorFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id claim is missing or invalid")
	}

	return userID, nil
}

// ========== COMPUTATION ==========

func (s *PayrollServiceImpl) ComputePayroll(ctx context.Context, employeeID string, month, year int) (payroll.BreakdownResponse, error) {
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return payroll.BreakdownResponse{}, err
	}

	periodStart, periodEnd := compensation.PeriodBounds(month, year)

	salaries, err := s.compensationRepo.GetSalariesByEmployee(ctx, employeeID)
	if err != nil {
		return payroll.BreakdownResponse{}, fmt.Errorf("failed to load salary records: %w", err)
	}
	salary, ok := compensation.ActiveSalary(salaries, periodStart)
	if !ok {
		return payroll.BreakdownResponse{}, compensation.ErrNoActiveSalary
	}

	adjustments, err := s.compensationRepo.GetAdjustmentsByEmployee(ctx, employeeID)
	if err != nil {
		return payroll.BreakdownResponse{}, fmt.Errorf("failed to load adjustment records: %w", err)
	}
	active := compensation.ActiveAdjustments(adjustments, periodStart, periodEnd)
	allowances, deductions, totalAllowances, totalDeductions := payroll.SplitAdjustments(active)

	gross := salary.BasicSalary.Add(totalAllowances)
	tax := CalculateTax(gross)
	net := gross.Sub(totalDeductions).Sub(tax)

	breakdown := payroll.Breakdown{
		EmployeeID:      employeeID,
		PeriodMonth:     month,
		PeriodYear:      year,
		BasicSalary:     salary.BasicSalary,
		TotalAllowances: totalAllowances,
		TotalDeductions: totalDeductions,
		GrossSalary:     gross,
		Tax:             tax,
		NetSalary:       net,
		Allowances:      allowances,
		Deductions:      deductions,
	}

	return mapToBreakdownResponse(breakdown), nil
}

// ========== RUNS ==========

func (s *PayrollServiceImpl) CreateDraftRun(ctx context.Context, req payroll.CreateRunRequest) (payroll.PayrollRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	userID, err := actorFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	if !emp.IsActive {
		return payroll.PayrollRunResponse{}, employee.ErrEmployeeInactive
	}

	// Snapshot the salary effective today; the run keeps this figure even
	// if the employee's compensation changes before settlement.
	salaries, err := s.compensationRepo.GetSalariesByEmployee(ctx, req.EmployeeID)
	if err != nil {
		return payroll.PayrollRunResponse{}, fmt.Errorf("failed to load salary records: %w", err)
	}
	salary, ok := compensation.ActiveSalary(salaries, time.Now())
	if !ok {
		return payroll.PayrollRunResponse{}, compensation.ErrNoActiveSalary
	}

	override := decimal.Zero
	if req.DeductionsOverride != nil {
		override = *req.DeductionsOverride
	}

	run := payroll.PayrollRun{
		EmployeeID:         req.EmployeeID,
		PeriodMonth:        req.PeriodMonth,
		PeriodYear:         req.PeriodYear,
		BasicSalary:        salary.BasicSalary,
		DeductionsOverride: override,
		NetSalary:          salary.BasicSalary.Sub(override),
		Status:             payroll.RunStatusDraft,
		CreatedBy:          userID,
	}

	created, err := s.payrollRepo.CreateRun(ctx, run)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return mapToRunResponse(created), nil
}

func (s *PayrollServiceImpl) CreateBulkRuns(ctx context.Context, req payroll.CreateBulkRunsRequest) (payroll.BulkRunResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.BulkRunResult{}, err
	}

	userID, err := actorFromContext(ctx)
	if err != nil {
		return payroll.BulkRunResult{}, err
	}

	employees, err := s.employeeRepo.GetActive(ctx)
	if err != nil {
		return payroll.BulkRunResult{}, fmt.Errorf("failed to load employees: %w", err)
	}

	override := decimal.Zero
	if req.DeductionsOverride != nil {
		override = *req.DeductionsOverride
	}

	// Each run is its own unit of failure: one employee failing must not
	// roll back runs already created for others.
	var result payroll.BulkRunResult
	for _, emp := range employees {
		salaries, err := s.compensationRepo.GetSalariesByEmployee(ctx, emp.ID)
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", emp.FullName, err))
			continue
		}
		salary, ok := compensation.ActiveSalary(salaries, time.Now())
		if !ok {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: no active salary", emp.FullName))
			continue
		}

		run := payroll.PayrollRun{
			EmployeeID:         emp.ID,
			PeriodMonth:        req.PeriodMonth,
			PeriodYear:         req.PeriodYear,
			BasicSalary:        salary.BasicSalary,
			DeductionsOverride: override,
			NetSalary:          salary.BasicSalary.Sub(override),
			Status:             payroll.RunStatusDraft,
			CreatedBy:          userID,
		}

		if _, err := s.payrollRepo.CreateRun(ctx, run); err != nil {
			if errors.Is(err, payroll.ErrDuplicateRun) {
				result.SkippedCount++
				continue
			}
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", emp.FullName, err))
			continue
		}
		result.CreatedCount++
	}

	return result, nil
}

func (s *PayrollServiceImpl) UpdateDraftRun(ctx context.Context, req payroll.UpdateRunRequest) (payroll.PayrollRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, req.ID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}
	if run.Status != payroll.RunStatusDraft {
		return payroll.PayrollRunResponse{}, payroll.ErrInvalidRunState
	}

	// The preview net deliberately ignores allowances and tax; the settled
	// figure on the payslip is the authoritative one.
	previewNet := run.BasicSalary.Sub(req.DeductionsOverride)

	updated, err := s.payrollRepo.UpdateRunDeductions(ctx, req.ID, req.DeductionsOverride, previewNet)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return mapToRunResponse(updated), nil
}

// SettleRun transitions a draft run to processed and materializes its
// payslip with itemized detail lines. The whole settlement runs in one
// transaction with the run row locked, so retries and concurrent calls are
// safe: a second attempt either fails the draft-status check or finds the
// payslip already present and skips creation.
func (s *PayrollServiceImpl) SettleRun(ctx context.Context, runID string) (payroll.PayrollRunResponse, error) {
	var settled payroll.PayrollRun

	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		run, err := s.payrollRepo.GetRunByIDForUpdate(ctx, runID)
		if err != nil {
			return err
		}
		if run.Status != payroll.RunStatusDraft {
			return payroll.ErrInvalidRunState
		}

		// The stored snapshot is canonical; a salary raise after run
		// creation must not leak into this settlement.
		basic := run.BasicSalary

		adjustments, err := s.compensationRepo.GetAdjustmentsByEmployee(ctx, run.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to load adjustment records: %w", err)
		}
		periodStart, periodEnd := compensation.PeriodBounds(run.PeriodMonth, run.PeriodYear)
		active := compensation.ActiveAdjustments(adjustments, periodStart, periodEnd)
		allowances, deductions, totalAllowances, adjustmentDeductions := payroll.SplitAdjustments(active)

		totalDeductions := adjustmentDeductions.Add(run.DeductionsOverride)
		gross := basic.Add(totalAllowances)
		tax := CalculateTax(gross)
		net := gross.Sub(totalDeductions).Sub(tax)

		_, err = s.payrollRepo.GetPayslipByRunID(ctx, run.ID)
		switch {
		case err == nil:
			// Payslip already exists: leave it untouched, only flip status.
		case errors.Is(err, payroll.ErrPayslipNotFound):
			slip := payroll.Payslip{
				PayrollRunID:    run.ID,
				EmployeeID:      run.EmployeeID,
				BasicSalary:     basic,
				TotalAllowances: totalAllowances,
				TotalDeductions: totalDeductions,
				GrossSalary:     gross,
				Tax:             tax,
				NetSalary:       net,
				PaymentStatus:   payroll.PaymentStatusPending,
			}
			created, err := s.payrollRepo.CreatePayslip(ctx, slip)
			if err != nil {
				return err
			}

			for _, line := range allowances {
				detail := payroll.PayslipDetail{
					PayslipID:   created.ID,
					Kind:        payroll.DetailKindAllowance,
					Description: line.Category,
					Amount:      line.Amount,
				}
				if _, err := s.payrollRepo.CreatePayslipDetail(ctx, detail); err != nil {
					return err
				}
			}
			for _, line := range deductions {
				detail := payroll.PayslipDetail{
					PayslipID:   created.ID,
					Kind:        payroll.DetailKindDeduction,
					Description: line.Category,
					Amount:      line.Amount,
				}
				if _, err := s.payrollRepo.CreatePayslipDetail(ctx, detail); err != nil {
					return err
				}
			}
			if tax.IsPositive() {
				detail := payroll.PayslipDetail{
					PayslipID:   created.ID,
					Kind:        payroll.DetailKindDeduction,
					Description: "Income Tax",
					Amount:      tax,
				}
				if _, err := s.payrollRepo.CreatePayslipDetail(ctx, detail); err != nil {
					return err
				}
			}
		default:
			return err
		}

		if err := s.payrollRepo.MarkRunProcessed(ctx, run.ID); err != nil {
			return err
		}

		run.Status = payroll.RunStatusProcessed
		settled = run
		return nil
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return mapToRunResponse(settled), nil
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.PayrollRunResponse, error) {
	run, err := s.payrollRepo.GetRunByID(ctx, id)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return mapToRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.RunFilter) (payroll.ListRunResponse, error) {
	runs, totalCount, err := s.payrollRepo.ListRuns(ctx, filter)
	if err != nil {
		return payroll.ListRunResponse{}, err
	}

	result := make([]payroll.PayrollRunResponse, 0, len(runs))
	for _, run := range runs {
		result = append(result, mapToRunResponse(run))
	}

	return payroll.ListRunResponse{
		Data:       result,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ========== PAYSLIPS ==========

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	slip, err := s.payrollRepo.GetPayslipByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	details, err := s.payrollRepo.GetPayslipDetails(ctx, slip.ID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	return mapToPayslipResponse(slip, details), nil
}

func (s *PayrollServiceImpl) ListPayslips(ctx context.Context, filter payroll.PayslipFilter) (payroll.ListPayslipResponse, error) {
	slips, totalCount, err := s.payrollRepo.ListPayslips(ctx, filter)
	if err != nil {
		return payroll.ListPayslipResponse{}, err
	}

	result := make([]payroll.PayslipResponse, 0, len(slips))
	for _, slip := range slips {
		result = append(result, mapToPayslipResponse(slip, nil))
	}

	return payroll.ListPayslipResponse{
		Data:       result,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) MarkPayslipPaid(ctx context.Context, req payroll.MarkPayslipPaidRequest) (payroll.PayslipResponse, error) {
	paymentDate := time.Now()
	if req.PaymentDate != nil {
		parsed, ok := validator.IsValidDate(*req.PaymentDate)
		if !ok {
			return payroll.PayslipResponse{}, validator.ValidationErrors{{Field: "payment_date", Message: "must be in YYYY-MM-DD format"}}
		}
		paymentDate = parsed
	}

	slip, err := s.payrollRepo.UpdatePayslipPayment(ctx, req.ID, payroll.PaymentStatusPaid, &paymentDate)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	return mapToPayslipResponse(slip, nil), nil
}

// ========== HELPERS ==========

func mapToRunResponse(run payroll.PayrollRun) payroll.PayrollRunResponse {
	return payroll.PayrollRunResponse{
		ID:                 run.ID,
		EmployeeID:         run.EmployeeID,
		EmployeeName:       run.EmployeeName,
		PeriodMonth:        run.PeriodMonth,
		PeriodYear:         run.PeriodYear,
		BasicSalary:        run.BasicSalary,
		DeductionsOverride: run.DeductionsOverride,
		NetSalary:          run.NetSalary,
		Status:             string(run.Status),
		CreatedBy:          run.CreatedBy,
	}
}

func mapToBreakdownResponse(b payroll.Breakdown) payroll.BreakdownResponse {
	return payroll.BreakdownResponse{
		EmployeeID:      b.EmployeeID,
		PeriodMonth:     b.PeriodMonth,
		PeriodYear:      b.PeriodYear,
		BasicSalary:     b.BasicSalary,
		TotalAllowances: b.TotalAllowances,
		TotalDeductions: b.TotalDeductions,
		GrossSalary:     b.GrossSalary,
		Tax:             b.Tax,
		NetSalary:       b.NetSalary,
		Allowances:      mapToLineResponses(b.Allowances),
		Deductions:      mapToLineResponses(b.Deductions),
	}
}

func mapToLineResponses(lines []payroll.BreakdownLine) []payroll.BreakdownLineResponse {
	result := make([]payroll.BreakdownLineResponse, 0, len(lines))
	for _, line := range lines {
		result = append(result, payroll.BreakdownLineResponse{Category: line.Category, Amount: line.Amount})
	}
	return result
}

func mapToPayslipResponse(slip payroll.Payslip, details []payroll.PayslipDetail) payroll.PayslipResponse {
	var paymentDateStr *string
	if slip.PaymentDate != nil {
		str := slip.PaymentDate.Format("2006-01-02")
		paymentDateStr = &str
	}

	resp := payroll.PayslipResponse{
		ID:              slip.ID,
		PayrollRunID:    slip.PayrollRunID,
		EmployeeID:      slip.EmployeeID,
		BasicSalary:     slip.BasicSalary,
		TotalAllowances: slip.TotalAllowances,
		TotalDeductions: slip.TotalDeductions,
		GrossSalary:     slip.GrossSalary,
		Tax:             slip.Tax,
		NetSalary:       slip.NetSalary,
		PaymentStatus:   string(slip.PaymentStatus),
		PaymentDate:     paymentDateStr,
	}

	for _, d := range details {
		resp.Details = append(resp.Details, payroll.PayslipDetailResponse{
			ID:          d.ID,
			Kind:        string(d.Kind),
			Description: d.Description,
			Amount:      d.Amount,
		})
	}

	return resp
}
