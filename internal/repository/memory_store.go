package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"easy_admin/internal/entities"
)

const (
	CompaniesKey = "easy_companies"
	UsersKey     = "easy_usuarios"
	AccountsKey  = "easy_accounts"
)

// storedAccount keeps the password hash that entities.Account hides from JSON
type storedAccount struct {
	entities.Account
	PasswordHash string `json:"password_hash"`
}

// MemoryStore holds every collection in memory. With a KeyValue attached it
// loads on construction and writes each changed collection through before the
// change becomes visible; a failed write leaves the in-memory state untouched.
type MemoryStore struct {
	mu        sync.RWMutex
	companies []entities.Company
	users     []entities.User
	accounts  []entities.Account
	lastID    int64
	kv        KeyValue
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		companies: []entities.Company{},
		users:     []entities.User{},
		accounts:  []entities.Account{},
		now:       time.Now,
	}
}

// NewLocalStore builds a MemoryStore backed by kv and loads the saved collections
func NewLocalStore(ctx context.Context, kv KeyValue) (*MemoryStore, error) {
	s := NewMemoryStore()
	s.kv = kv

	if err := s.load(ctx, CompaniesKey, &s.companies); err != nil {
		return nil, err
	}
	if err := s.load(ctx, UsersKey, &s.users); err != nil {
		return nil, err
	}
	var stored []storedAccount
	if err := s.load(ctx, AccountsKey, &stored); err != nil {
		return nil, err
	}
	for _, sa := range stored {
		a := sa.Account
		a.PasswordHash = sa.PasswordHash
		s.accounts = append(s.accounts, a)
	}

	for _, c := range s.companies {
		s.lastID = max(s.lastID, c.ID)
	}
	for _, u := range s.users {
		s.lastID = max(s.lastID, u.ID)
	}
	for _, a := range s.accounts {
		s.lastID = max(s.lastID, a.ID)
	}
	return s, nil
}

func (s *MemoryStore) load(ctx context.Context, key string, dst any) error {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *MemoryStore) persist(ctx context.Context, key string, value any) error {
	if s.kv == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, raw)
}

func storedAccounts(accounts []entities.Account) []storedAccount {
	stored := make([]storedAccount, len(accounts))
	for i, a := range accounts {
		stored[i] = storedAccount{Account: a, PasswordHash: a.PasswordHash}
	}
	return stored
}

func (s *MemoryStore) persistAccounts(ctx context.Context, accounts []entities.Account) error {
	return s.persist(ctx, AccountsKey, storedAccounts(accounts))
}

type kvWrite struct {
	key  string
	next any
	prev any
}

// persistAll writes each document in order. When one write fails, the
// documents already written are restored to prev so the stored collections
// stay consistent with each other.
func (s *MemoryStore) persistAll(ctx context.Context, writes ...kvWrite) error {
	for i, w := range writes {
		err := s.persist(ctx, w.key, w.next)
		if err == nil {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if rbErr := s.persist(ctx, writes[j].key, writes[j].prev); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("restore %s: %w", writes[j].key, rbErr))
			}
		}
		return err
	}
	return nil
}

func (s *MemoryStore) nextID() int64 {
	s.lastID++
	return s.lastID
}

// Companies

func (s *MemoryStore) ListCompanies(ctx context.Context) ([]entities.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Company{}, s.companies...), nil
}

func (s *MemoryStore) GetCompany(ctx context.Context, id int64) (*entities.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.companies {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, entities.ErrNotFound
}

func (s *MemoryStore) CreateCompany(ctx context.Context, spec entities.CompanySpec) (*entities.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	company := entities.Company{
		ID:            s.lastID + 1,
		Name:          spec.Name,
		TaxID:         spec.TaxID,
		Status:        spec.Status,
		ChatbotAccess: spec.ChatbotAccess,
		APIToken:      spec.Credentials.APIToken,
		AppKey:        spec.Credentials.AppKey,
		AppSecret:     spec.Credentials.AppSecret,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	next := append(append([]entities.Company{}, s.companies...), company)
	if err := s.persist(ctx, CompaniesKey, next); err != nil {
		return nil, err
	}
	s.nextID()
	s.companies = next
	return &company, nil
}

func (s *MemoryStore) UpdateCompany(ctx context.Context, id int64, spec entities.CompanySpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := append([]entities.Company{}, s.companies...)
	for i := range next {
		if next[i].ID != id {
			continue
		}
		next[i].Name = spec.Name
		next[i].TaxID = spec.TaxID
		next[i].Status = spec.Status
		next[i].ChatbotAccess = spec.ChatbotAccess
		next[i].UpdatedAt = s.now().UTC()
		if err := s.persist(ctx, CompaniesKey, next); err != nil {
			return err
		}
		s.companies = next
		return nil
	}
	return entities.ErrNotFound
}

// DeleteCompany removes the company and cascades to its users and accounts
func (s *MemoryStore) DeleteCompany(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	companies := make([]entities.Company, 0, len(s.companies))
	found := false
	for _, c := range s.companies {
		if c.ID == id {
			found = true
			continue
		}
		companies = append(companies, c)
	}
	if !found {
		return entities.ErrNotFound
	}

	users := make([]entities.User, 0, len(s.users))
	for _, u := range s.users {
		if u.CompanyID != id {
			users = append(users, u)
		}
	}
	accounts := make([]entities.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if a.CompanyID == nil || *a.CompanyID != id {
			accounts = append(accounts, a)
		}
	}

	err := s.persistAll(ctx,
		kvWrite{key: UsersKey, next: users, prev: s.users},
		kvWrite{key: AccountsKey, next: storedAccounts(accounts), prev: storedAccounts(s.accounts)},
		kvWrite{key: CompaniesKey, next: companies, prev: s.companies},
	)
	if err != nil {
		return err
	}
	s.companies, s.users, s.accounts = companies, users, accounts
	return nil
}

// Users

func (s *MemoryStore) ListUsers(ctx context.Context, companyID int64) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := []entities.User{}
	for _, u := range s.users {
		if u.CompanyID == companyID {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *MemoryStore) FindUsersByPhone(ctx context.Context, phone string) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := []entities.User{}
	for _, u := range s.users {
		if phone != "" && u.PhoneValue() == phone {
			users = append(users, u)
		}
	}
	return users, nil
}

// CreateUser requires the owning company to exist
func (s *MemoryStore) CreateUser(ctx context.Context, spec entities.NewUserSpec) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists := false
	for _, c := range s.companies {
		if c.ID == spec.CompanyID {
			exists = true
			break
		}
	}
	if !exists {
		return nil, fmt.Errorf("company %d: %w", spec.CompanyID, entities.ErrNotFound)
	}

	now := s.now().UTC()
	user := entities.User{
		ID:        s.lastID + 1,
		Name:      spec.Name,
		Role:      spec.Role,
		Activity:  spec.Activity,
		CompanyID: spec.CompanyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if spec.Phone != "" {
		phone := spec.Phone
		user.Phone = &phone
	}

	next := append(append([]entities.User{}, s.users...), user)
	if err := s.persist(ctx, UsersKey, next); err != nil {
		return nil, err
	}
	s.nextID()
	s.users = next
	return &user, nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]entities.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID != id {
			next = append(next, u)
		}
	}
	if len(next) == len(s.users) {
		return entities.ErrNotFound
	}
	if err := s.persist(ctx, UsersKey, next); err != nil {
		return err
	}
	s.users = next
	return nil
}

// Accounts

func (s *MemoryStore) GetAccountByEmail(ctx context.Context, email string) (*entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, entities.ErrNotFound
}

func (s *MemoryStore) CreateAccount(ctx context.Context, account *entities.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, account.Email) {
			return entities.ErrDuplicateEmail
		}
	}

	created := *account
	created.ID = s.lastID + 1
	created.CreatedAt = s.now().UTC()

	next := append(append([]entities.Account{}, s.accounts...), created)
	if err := s.persistAccounts(ctx, next); err != nil {
		return err
	}
	s.nextID()
	s.accounts = next
	account.ID = created.ID
	account.CreatedAt = created.CreatedAt
	return nil
}
