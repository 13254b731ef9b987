package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailExists            = errors.New("email already registered")
	ErrFinanceAccessRequired  = errors.New("finance or admin role required")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)
