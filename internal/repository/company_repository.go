package repository

import (
	"context"
	"errors"

	"easy_admin/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the part of *pgxpool.Pool the repositories use
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const companyColumns = "id, name, tax_id, status, chatbot_access, api_token, app_key, app_secret, created_at, updated_at"

type CompanyRepository struct {
	db DBTX
}

func NewCompanyRepository(db DBTX) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func scanCompany(row pgx.Row) (*entities.Company, error) {
	var c entities.Company
	err := row.Scan(&c.ID, &c.Name, &c.TaxID, &c.Status, &c.ChatbotAccess,
		&c.APIToken, &c.AppKey, &c.AppSecret, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) ListCompanies(ctx context.Context) ([]entities.Company, error) {
	rows, err := r.db.Query(ctx, "SELECT "+companyColumns+" FROM companies ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []entities.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, rows.Err()
}

func (r *CompanyRepository) GetCompany(ctx context.Context, id int64) (*entities.Company, error) {
	return scanCompany(r.db.QueryRow(ctx, "SELECT "+companyColumns+" FROM companies WHERE id = $1", id))
}

func (r *CompanyRepository) CreateCompany(ctx context.Context, spec entities.CompanySpec) (*entities.Company, error) {
	return scanCompany(r.db.QueryRow(ctx, `
		INSERT INTO companies (name, tax_id, status, chatbot_access, api_token, app_key, app_secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+companyColumns,
		spec.Name, spec.TaxID, spec.Status, spec.ChatbotAccess,
		spec.Credentials.APIToken, spec.Credentials.AppKey, spec.Credentials.AppSecret))
}

// UpdateCompany changes the editable fields only; credentials are immutable
func (r *CompanyRepository) UpdateCompany(ctx context.Context, id int64, spec entities.CompanySpec) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE companies SET name=$1, tax_id=$2, status=$3, chatbot_access=$4, updated_at=NOW()
		WHERE id=$5
	`, spec.Name, spec.TaxID, spec.Status, spec.ChatbotAccess, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrNotFound
	}
	return nil
}

func (r *CompanyRepository) DeleteCompany(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM companies WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrNotFound
	}
	return nil
}
