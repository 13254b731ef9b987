package compensation

import "errors"

var (
	ErrNoActiveSalary     = errors.New("no active salary for employee in period")
	ErrSalaryNotFound     = errors.New("salary record not found")
	ErrAdjustmentNotFound = errors.New("adjustment record not found")
)
