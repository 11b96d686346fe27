package repository

import (
	"context"
	"errors"

	"easy_admin/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) CreateAccount(ctx context.Context, account *entities.Account) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO accounts (name, email, password_hash, role, company_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, account.Name, account.Email, account.PasswordHash, account.Role, account.CompanyID).
		Scan(&account.ID, &account.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return entities.ErrDuplicateEmail
	}
	return err
}

func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (*entities.Account, error) {
	var a entities.Account
	err := r.db.QueryRow(ctx,
		"SELECT id, name, email, password_hash, role, company_id, created_at FROM accounts WHERE email = $1",
		email).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.CompanyID, &a.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// PostgresStore bundles the pgx repositories into one persistence collaborator
type PostgresStore struct {
	*CompanyRepository
	*UserRepository
	*AccountRepository
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{
		CompanyRepository: NewCompanyRepository(db),
		UserRepository:    NewUserRepository(db),
		AccountRepository: NewAccountRepository(db),
	}
}
