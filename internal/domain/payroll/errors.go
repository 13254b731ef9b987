package payroll

import "errors"

var (
	ErrRunNotFound     = errors.New("payroll run not found")
	ErrDuplicateRun    = errors.New("payroll run already exists for this employee and period")
	ErrInvalidRunState = errors.New("payroll run is not in draft status")
	ErrPayslipNotFound = errors.New("payslip not found")
)
