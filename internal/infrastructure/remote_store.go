package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"easy_admin/internal/entities"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// remoteCompany is the create payload; it carries the generated credentials
// that entities.CompanySpec keeps out of JSON.
type remoteCompany struct {
	entities.CompanySpec
	entities.Credentials
}

type remoteAccount struct {
	entities.Account
	PasswordHash string `json:"password_hash"`
}

type remoteError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RemoteStore persists companies, users and accounts through the console's
// REST API.
type RemoteStore struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewRemoteStore(baseURL, token string, logger *zap.Logger) *RemoteStore {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetLogger(restyLogger{s: logger.Named("resty").Sugar()}).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(readsOnly).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetError(&remoteError{})
	if token != "" {
		client.SetAuthToken(token)
	}

	return &RemoteStore{
		httpClient: client,
		logger:     logger,
	}
}

// readsOnly retries GETs on transport errors and 5xx answers. Writes are sent
// once: the server may already have committed a request whose answer was lost.
func readsOnly(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

// restyLogger routes resty's own logging into zap
type restyLogger struct {
	s *zap.SugaredLogger
}

func (l restyLogger) Errorf(format string, v ...interface{}) { l.s.Errorf(format, v...) }
func (l restyLogger) Warnf(format string, v ...interface{})  { l.s.Warnf(format, v...) }
func (l restyLogger) Debugf(format string, v ...interface{}) { l.s.Debugf(format, v...) }

func (s *RemoteStore) request(ctx context.Context) *resty.Request {
	return s.httpClient.R().SetContext(ctx)
}

// check turns transport failures and non-2xx answers into errors. 404 maps
// to entities.ErrNotFound.
func (s *RemoteStore) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		s.logger.Error("Remote store call failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return entities.ErrNotFound
	case http.StatusConflict:
		if op == "create account" {
			return entities.ErrDuplicateEmail
		}
	}

	msg := resp.Status()
	if e, ok := resp.Error().(*remoteError); ok && e.Message != "" {
		msg = e.Message
	}
	s.logger.Error("Remote store returned error",
		zap.String("op", op),
		zap.Int("status_code", resp.StatusCode()),
		zap.String("msg", msg),
	)
	return fmt.Errorf("%s: remote status %d: %s", op, resp.StatusCode(), msg)
}

func companyPath(id int64) string {
	return "/companies/" + strconv.FormatInt(id, 10)
}

func (s *RemoteStore) ListCompanies(ctx context.Context) ([]entities.Company, error) {
	var companies []entities.Company
	resp, err := s.request(ctx).SetResult(&companies).Get("/companies")
	if err := s.check("list companies", resp, err); err != nil {
		return nil, err
	}
	return companies, nil
}

func (s *RemoteStore) GetCompany(ctx context.Context, id int64) (*entities.Company, error) {
	var company entities.Company
	resp, err := s.request(ctx).SetResult(&company).Get(companyPath(id))
	if err := s.check("get company", resp, err); err != nil {
		return nil, err
	}
	return &company, nil
}

func (s *RemoteStore) CreateCompany(ctx context.Context, spec entities.CompanySpec) (*entities.Company, error) {
	var company entities.Company
	resp, err := s.request(ctx).
		SetBody(remoteCompany{CompanySpec: spec, Credentials: spec.Credentials}).
		SetResult(&company).
		Post("/companies")
	if err := s.check("create company", resp, err); err != nil {
		return nil, err
	}
	return &company, nil
}

func (s *RemoteStore) UpdateCompany(ctx context.Context, id int64, spec entities.CompanySpec) error {
	resp, err := s.request(ctx).SetBody(spec).Put(companyPath(id))
	return s.check("update company", resp, err)
}

func (s *RemoteStore) DeleteCompany(ctx context.Context, id int64) error {
	resp, err := s.request(ctx).Delete(companyPath(id))
	return s.check("delete company", resp, err)
}

func (s *RemoteStore) ListUsers(ctx context.Context, companyID int64) ([]entities.User, error) {
	var users []entities.User
	resp, err := s.request(ctx).SetResult(&users).Get(companyPath(companyID) + "/users")
	if err := s.check("list users", resp, err); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *RemoteStore) FindUsersByPhone(ctx context.Context, phone string) ([]entities.User, error) {
	var users []entities.User
	resp, err := s.request(ctx).
		SetQueryParam("telefone", phone).
		SetResult(&users).
		Get("/users")
	if err := s.check("find users", resp, err); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *RemoteStore) CreateUser(ctx context.Context, spec entities.NewUserSpec) (*entities.User, error) {
	var user entities.User
	resp, err := s.request(ctx).SetBody(spec).SetResult(&user).Post("/users")
	if err := s.check("create user", resp, err); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *RemoteStore) DeleteUser(ctx context.Context, id int64) error {
	resp, err := s.request(ctx).Delete("/users/" + strconv.FormatInt(id, 10))
	return s.check("delete user", resp, err)
}

func (s *RemoteStore) GetAccountByEmail(ctx context.Context, email string) (*entities.Account, error) {
	var account remoteAccount
	resp, err := s.request(ctx).
		SetQueryParam("email", email).
		SetResult(&account).
		Get("/accounts")
	if err := s.check("get account", resp, err); err != nil {
		return nil, err
	}
	a := account.Account
	a.PasswordHash = account.PasswordHash
	return &a, nil
}

func (s *RemoteStore) CreateAccount(ctx context.Context, account *entities.Account) error {
	var created entities.Account
	resp, err := s.request(ctx).
		SetBody(remoteAccount{Account: *account, PasswordHash: account.PasswordHash}).
		SetResult(&created).
		Post("/accounts")
	if err := s.check("create account", resp, err); err != nil {
		return err
	}
	account.ID = created.ID
	account.CreatedAt = created.CreatedAt
	return nil
}
