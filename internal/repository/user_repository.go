package repository

import (
	"context"
	"errors"

	"easy_admin/internal/entities"

	"github.com/jackc/pgx/v5"
)

const userColumns = "id, name, phone, role, activity, company_id, created_at, updated_at"

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.Role, &u.Activity, &u.CompanyID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, sql string, args ...any) ([]entities.User, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []entities.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) ListUsers(ctx context.Context, companyID int64) ([]entities.User, error) {
	return r.queryUsers(ctx, "SELECT "+userColumns+" FROM users WHERE company_id = $1 ORDER BY id", companyID)
}

func (r *UserRepository) FindUsersByPhone(ctx context.Context, phone string) ([]entities.User, error) {
	return r.queryUsers(ctx, "SELECT "+userColumns+" FROM users WHERE phone = $1 ORDER BY id", phone)
}

func (r *UserRepository) CreateUser(ctx context.Context, spec entities.NewUserSpec) (*entities.User, error) {
	var phone *string
	if spec.Phone != "" {
		phone = &spec.Phone
	}
	return scanUser(r.db.QueryRow(ctx, `
		INSERT INTO users (name, phone, role, activity, company_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		spec.Name, phone, spec.Role, spec.Activity, spec.CompanyID))
}

func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM users WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrNotFound
	}
	return nil
}
