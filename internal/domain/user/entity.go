package user

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleFinance  Role = "finance"
	RoleEmployee Role = "employee"
)

// CanManagePayroll reports whether the role may create, edit, or settle
// payroll runs.
func CanManagePayroll(role Role) bool {
	return role == RoleAdmin || role == RoleFinance
}
