package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"easy_admin/internal/entities"
	"easy_admin/internal/interfaces"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const TokenTTL = 24 * time.Hour

type AuthUsecase struct {
	accounts  interfaces.AccountStore
	companies interfaces.CompanyStore
	jwtSecret []byte
	logger    *zap.Logger
	now       func() time.Time
}

func NewAuthUsecase(accounts interfaces.AccountStore, companies interfaces.CompanyStore, secret string, logger *zap.Logger) *AuthUsecase {
	return &AuthUsecase{
		accounts:  accounts,
		companies: companies,
		jwtSecret: []byte(secret),
		logger:    logger,
		now:       time.Now,
	}
}

// Login checks the password and, when role is set, that the account holds
// that role. It returns a signed HS256 token.
func (uc *AuthUsecase) Login(ctx context.Context, email, password string, role entities.AccountRole) (string, *entities.Account, error) {
	account, err := uc.accounts.GetAccountByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, entities.ErrNotFound) {
		return "", nil, entities.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, entities.Persistence("get account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, entities.ErrInvalidCredentials
	}
	if role != "" && account.Role != role {
		return "", nil, entities.ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"user_id": account.ID,
		"role":    string(account.Role),
		"exp":     uc.now().Add(TokenTTL).Unix(),
	}
	if account.CompanyID != nil {
		claims["company_id"] = *account.CompanyID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	uc.logger.Info("login", zap.Int64("account_id", account.ID), zap.String("role", string(account.Role)))
	return tokenString, account, nil
}

// EnsureAdmin creates the platform admin if none exists (called on startup)
func (uc *AuthUsecase) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := uc.accounts.GetAccountByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, entities.ErrNotFound) {
		return entities.Persistence("get account", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &entities.Account{
		Name:         "Administrador",
		Email:        email,
		PasswordHash: string(hashed),
		Role:         entities.RolePlatformAdmin,
	}
	if err := uc.accounts.CreateAccount(ctx, admin); err != nil {
		return entities.Persistence("create account", err)
	}
	uc.logger.Info("platform admin created", zap.String("email", email))
	return nil
}

// CreateCompanyAdmin registers a login bound to companyID
func (uc *AuthUsecase) CreateCompanyAdmin(ctx context.Context, companyID int64, name, email, password string) (*entities.Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, entities.ErrEmptyName
	}
	if !strings.Contains(email, "@") || len(password) < 6 {
		return nil, entities.ErrInvalidInput
	}
	if _, err := uc.companies.GetCompany(ctx, companyID); err != nil {
		return nil, entities.Persistence("get company", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	account := &entities.Account{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         entities.RoleCompanyAdmin,
		CompanyID:    &companyID,
	}
	if err := uc.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, entities.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, entities.Persistence("create account", err)
	}
	return account, nil
}
