package http

import (
	"net/http"
	"strconv"

	"easy_admin/internal/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the platform admin's company management
type AdminHandler struct {
	companies *usecases.CompanyUsecase
	auth      *usecases.AuthUsecase
	logger    *zap.Logger
}

func NewAdminHandler(companies *usecases.CompanyUsecase, auth *usecases.AuthUsecase, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		companies: companies,
		auth:      auth,
		logger:    logger,
	}
}

func (h *AdminHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/companies", h.ListCompanies)
	admin.POST("/companies", h.CreateCompany)
	admin.GET("/companies/:id", h.GetCompany)
	admin.PUT("/companies/:id", h.UpdateCompany)
	admin.DELETE("/companies/:id", h.DeleteCompany)
	admin.GET("/companies/:id/users", h.ListUsers)
	admin.POST("/companies/:id/admins", h.CreateCompanyAdmin)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c)
		return 0, false
	}
	return id, true
}

func bindCompanyForm(c *gin.Context) (usecases.CompanyForm, bool) {
	var form usecases.CompanyForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return form, false
	}
	form.Name = TruncateString(SanitizeString(form.Name), MaxNameLength)
	return form, true
}

func (h *AdminHandler) ListCompanies(c *gin.Context) {
	views, err := h.companies.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *AdminHandler) GetCompany(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.companies.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AdminHandler) CreateCompany(c *gin.Context) {
	form, ok := bindCompanyForm(c)
	if !ok {
		return
	}
	view, err := h.companies.Create(c.Request.Context(), form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *AdminHandler) UpdateCompany(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	form, ok := bindCompanyForm(c)
	if !ok {
		return
	}
	view, err := h.companies.Update(c.Request.Context(), id, form)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AdminHandler) DeleteCompany(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.companies.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	users, err := h.companies.ListUsers(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateCompanyAdmin registers a company_admin login for the company
func (h *AdminHandler) CreateCompanyAdmin(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name     string `json:"nome"`
		Email    string `json:"email"`
		Password string `json:"senha"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if !ValidateLength(req.Email, 3, MaxEmailLength) {
		badRequest(c)
		return
	}

	account, err := h.auth.CreateCompanyAdmin(c.Request.Context(), id,
		TruncateString(SanitizeString(req.Name), MaxNameLength),
		SanitizeString(req.Email),
		req.Password,
	)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}
