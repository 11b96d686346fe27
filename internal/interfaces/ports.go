package interfaces

import (
	"context"

	"easy_admin/internal/entities"
)

// CompanyStore persists tenants. Implementations return entities.ErrNotFound
// for unknown ids.
type CompanyStore interface {
	ListCompanies(ctx context.Context) ([]entities.Company, error)
	GetCompany(ctx context.Context, id int64) (*entities.Company, error)
	CreateCompany(ctx context.Context, spec entities.CompanySpec) (*entities.Company, error)
	UpdateCompany(ctx context.Context, id int64, spec entities.CompanySpec) error
	DeleteCompany(ctx context.Context, id int64) error
}

// UserStore persists allow-list entries.
type UserStore interface {
	ListUsers(ctx context.Context, companyID int64) ([]entities.User, error)
	FindUsersByPhone(ctx context.Context, phone string) ([]entities.User, error)
	CreateUser(ctx context.Context, spec entities.NewUserSpec) (*entities.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// AccountStore persists console logins.
type AccountStore interface {
	GetAccountByEmail(ctx context.Context, email string) (*entities.Account, error)
	CreateAccount(ctx context.Context, account *entities.Account) error
}

// Store is the full persistence collaborator handed to the usecases.
type Store interface {
	CompanyStore
	UserStore
	AccountStore
}
