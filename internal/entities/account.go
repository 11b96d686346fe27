package entities

import "time"

type AccountRole string

const (
	RolePlatformAdmin AccountRole = "platform_admin"
	RoleCompanyAdmin  AccountRole = "company_admin"
)

func (r AccountRole) Valid() bool {
	return r == RolePlatformAdmin || r == RoleCompanyAdmin
}

// Account is a console login. Company admins are bound to exactly one company.
type Account struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         AccountRole `json:"role"`
	CompanyID    *int64      `json:"company_id"`
	CreatedAt    time.Time   `json:"created_at"`
}
