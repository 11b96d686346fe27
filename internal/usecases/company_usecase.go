package usecases

import (
	"context"

	"easy_admin/internal/entities"
	"easy_admin/internal/infrastructure"
	"easy_admin/internal/interfaces"

	"go.uber.org/zap"
)

// CompanyForm is the raw input of the company create/edit form.
type CompanyForm struct {
	Name          string                 `json:"name"`
	TaxID         string                 `json:"tax_id"`
	Status        entities.CompanyStatus `json:"status"`
	ChatbotAccess *bool                  `json:"chatbot_access"`
	Phones        []string               `json:"phones"`
}

// CompanyView is a company plus the derived phone list of its users.
type CompanyView struct {
	entities.Company
	TaxIDFormatted string   `json:"tax_id_formatted"`
	Phones         []string `json:"phones"`
	UserCount      int      `json:"user_count"`
}

type CompanyUsecase struct {
	store   interfaces.Store
	metrics *infrastructure.Metrics
	logger  *zap.Logger
}

func NewCompanyUsecase(store interfaces.Store, metrics *infrastructure.Metrics, logger *zap.Logger) *CompanyUsecase {
	return &CompanyUsecase{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// List returns every company with its phone view
func (uc *CompanyUsecase) List(ctx context.Context) ([]CompanyView, error) {
	companies, err := uc.store.ListCompanies(ctx)
	if err != nil {
		return nil, entities.Persistence("list companies", err)
	}

	views := make([]CompanyView, 0, len(companies))
	for _, c := range companies {
		users, err := uc.store.ListUsers(ctx, c.ID)
		if err != nil {
			return nil, entities.Persistence("list users", err)
		}
		views = append(views, buildView(c, users))
	}
	return views, nil
}

func (uc *CompanyUsecase) Get(ctx context.Context, id int64) (*CompanyView, error) {
	company, err := uc.store.GetCompany(ctx, id)
	if err != nil {
		return nil, entities.Persistence("get company", err)
	}
	return uc.view(ctx, company)
}

// ListUsers returns the allow-list entries of a company
func (uc *CompanyUsecase) ListUsers(ctx context.Context, companyID int64) ([]entities.User, error) {
	if _, err := uc.store.GetCompany(ctx, companyID); err != nil {
		return nil, entities.Persistence("get company", err)
	}
	users, err := uc.store.ListUsers(ctx, companyID)
	if err != nil {
		return nil, entities.Persistence("list users", err)
	}
	return users, nil
}

func (uc *CompanyUsecase) Create(ctx context.Context, form CompanyForm) (*CompanyView, error) {
	spec, phones, err := validateForm(form)
	if err != nil {
		return nil, err
	}
	if err := uc.checkDuplicateTaxID(ctx, spec.TaxID, 0); err != nil {
		return nil, err
	}

	creds, err := GenerateCredentials()
	if err != nil {
		return nil, err
	}
	spec.Credentials = creds

	company, err := uc.store.CreateCompany(ctx, spec)
	if err != nil {
		return nil, entities.Persistence("create company", err)
	}

	plan := Reconcile(company.ID, phones, nil)
	if err := uc.apply(ctx, plan); err != nil {
		return nil, err
	}

	uc.logger.Info("company created",
		zap.Int64("company_id", company.ID),
		zap.Int("phones", len(plan.ToAdd)),
	)
	return uc.view(ctx, company)
}

// Update edits the company fields and converges its allow-list to the
// submitted phones without recreating users that are kept.
func (uc *CompanyUsecase) Update(ctx context.Context, id int64, form CompanyForm) (*CompanyView, error) {
	spec, phones, err := validateForm(form)
	if err != nil {
		return nil, err
	}
	if _, err := uc.store.GetCompany(ctx, id); err != nil {
		return nil, entities.Persistence("get company", err)
	}
	if err := uc.checkDuplicateTaxID(ctx, spec.TaxID, id); err != nil {
		return nil, err
	}

	if err := uc.store.UpdateCompany(ctx, id, spec); err != nil {
		return nil, entities.Persistence("update company", err)
	}

	existing, err := uc.store.ListUsers(ctx, id)
	if err != nil {
		return nil, entities.Persistence("list users", err)
	}
	plan := Reconcile(id, phones, existing)
	if err := uc.apply(ctx, plan); err != nil {
		return nil, err
	}

	uc.logger.Info("company updated",
		zap.Int64("company_id", id),
		zap.Int("added", len(plan.ToAdd)),
		zap.Int("removed", len(plan.ToRemove)),
	)
	return uc.Get(ctx, id)
}

// Delete removes the company together with all of its users
func (uc *CompanyUsecase) Delete(ctx context.Context, id int64) error {
	if _, err := uc.store.GetCompany(ctx, id); err != nil {
		return entities.Persistence("get company", err)
	}
	users, err := uc.store.ListUsers(ctx, id)
	if err != nil {
		return entities.Persistence("list users", err)
	}
	for _, u := range users {
		if err := uc.store.DeleteUser(ctx, u.ID); err != nil {
			return entities.Persistence("delete user", err)
		}
	}
	if err := uc.store.DeleteCompany(ctx, id); err != nil {
		return entities.Persistence("delete company", err)
	}

	uc.logger.Info("company deleted", zap.Int64("company_id", id), zap.Int("users", len(users)))
	return nil
}

// AddPhone appends one phone to a company's allow-list from the company dashboard.
func (uc *CompanyUsecase) AddPhone(ctx context.Context, companyID int64, raw string) (*entities.User, error) {
	phone, err := ValidatePhone(raw)
	if err != nil {
		return nil, err
	}
	if _, err := uc.store.GetCompany(ctx, companyID); err != nil {
		return nil, entities.Persistence("get company", err)
	}
	users, err := uc.store.ListUsers(ctx, companyID)
	if err != nil {
		return nil, entities.Persistence("list users", err)
	}

	withPhone := 0
	for _, u := range users {
		if !u.HasPhone() {
			continue
		}
		if u.PhoneValue() == phone {
			return nil, entities.ErrDuplicatePhone
		}
		withPhone++
	}

	user, err := uc.store.CreateUser(ctx, entities.NewUserSpec{
		Name:      ContactName(withPhone + 1),
		Phone:     phone,
		Role:      entities.RoleStaff,
		Activity:  entities.ActivityActive,
		CompanyID: companyID,
	})
	if err != nil {
		return nil, entities.Persistence("create user", err)
	}
	uc.metrics.ContactsAdded(1)
	return user, nil
}

// RemoveUser deletes a user only when it belongs to companyID
func (uc *CompanyUsecase) RemoveUser(ctx context.Context, companyID, userID int64) error {
	users, err := uc.store.ListUsers(ctx, companyID)
	if err != nil {
		return entities.Persistence("list users", err)
	}
	for _, u := range users {
		if u.ID != userID {
			continue
		}
		if err := uc.store.DeleteUser(ctx, userID); err != nil {
			return entities.Persistence("delete user", err)
		}
		if u.HasPhone() {
			uc.metrics.ContactsRemoved(1)
		}
		return nil
	}
	return entities.ErrNotFound
}

// apply runs removals before additions so freed phones can be reused. The
// first failure aborts.
func (uc *CompanyUsecase) apply(ctx context.Context, plan ReconcilePlan) error {
	for _, id := range plan.ToRemove {
		if err := uc.store.DeleteUser(ctx, id); err != nil {
			return entities.Persistence("delete user", err)
		}
		uc.metrics.ContactsRemoved(1)
	}
	for _, spec := range plan.ToAdd {
		if _, err := uc.store.CreateUser(ctx, spec); err != nil {
			return entities.Persistence("create user", err)
		}
		uc.metrics.ContactsAdded(1)
	}
	return nil
}

func (uc *CompanyUsecase) checkDuplicateTaxID(ctx context.Context, taxID string, excludeID int64) error {
	companies, err := uc.store.ListCompanies(ctx)
	if err != nil {
		return entities.Persistence("list companies", err)
	}
	for _, c := range companies {
		if c.ID != excludeID && c.TaxID == taxID {
			return entities.ErrDuplicateTaxID
		}
	}
	return nil
}

func (uc *CompanyUsecase) view(ctx context.Context, company *entities.Company) (*CompanyView, error) {
	users, err := uc.store.ListUsers(ctx, company.ID)
	if err != nil {
		return nil, entities.Persistence("list users", err)
	}
	v := buildView(*company, users)
	return &v, nil
}

func buildView(company entities.Company, users []entities.User) CompanyView {
	phones := []string{}
	for _, u := range users {
		if u.HasPhone() {
			phones = append(phones, u.PhoneValue())
		}
	}
	return CompanyView{
		Company:        company,
		TaxIDFormatted: FormatTaxID(company.TaxID),
		Phones:         phones,
		UserCount:      len(users),
	}
}

// validateForm checks name, tax id, status and phones in that order and
// returns the first failure.
func validateForm(form CompanyForm) (entities.CompanySpec, []string, error) {
	name, err := ValidateCompanyName(form.Name)
	if err != nil {
		return entities.CompanySpec{}, nil, err
	}
	taxID, err := ValidateTaxID(form.TaxID)
	if err != nil {
		return entities.CompanySpec{}, nil, err
	}

	status := form.Status
	if status == "" {
		status = entities.CompanyActive
	}
	if !status.Valid() {
		return entities.CompanySpec{}, nil, entities.ErrInvalidStatus
	}

	phones, err := ValidatePhoneList(form.Phones)
	if err != nil {
		return entities.CompanySpec{}, nil, err
	}

	chatbot := true
	if form.ChatbotAccess != nil {
		chatbot = *form.ChatbotAccess
	}

	return entities.CompanySpec{
		Name:          name,
		TaxID:         taxID,
		Status:        status,
		ChatbotAccess: chatbot,
	}, phones, nil
}
