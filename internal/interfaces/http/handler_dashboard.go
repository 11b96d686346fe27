package http

import (
	"net/http"

	"easy_admin/internal/entities"
	"easy_admin/internal/infrastructure"
	"easy_admin/internal/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardHandler serves a company admin's own company
type DashboardHandler struct {
	companies *usecases.CompanyUsecase
	logger    *zap.Logger
}

func NewDashboardHandler(companies *usecases.CompanyUsecase, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		companies: companies,
		logger:    logger,
	}
}

func (h *DashboardHandler) RegisterRoutes(company *gin.RouterGroup) {
	company.GET("", h.GetCompany)
	company.POST("/phones", h.AddPhone)
	company.DELETE("/users/:userId", h.RemoveUser)
	company.GET("/credentials/qr", h.CredentialsQR)
}

// companyScope returns the company bound to the token or aborts with 403
func (h *DashboardHandler) companyScope(c *gin.Context) (int64, bool) {
	companyID := getCompanyID(c)
	if companyID == 0 {
		respondError(c, h.logger, entities.ErrForbidden)
		return 0, false
	}
	return companyID, true
}

func (h *DashboardHandler) GetCompany(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}
	view, err := h.companies.Get(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	users, err := h.companies.ListUsers(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": view, "users": users})
}

func (h *DashboardHandler) AddPhone(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}
	var req struct {
		Phone string `json:"telefone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	user, err := h.companies.AddPhone(c.Request.Context(), companyID, req.Phone)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *DashboardHandler) RemoveUser(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if err := h.companies.RemoveUser(c.Request.Context(), companyID, userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CredentialsQR returns the company's app key as a PNG QR code
func (h *DashboardHandler) CredentialsQR(c *gin.Context) {
	companyID, ok := h.companyScope(c)
	if !ok {
		return
	}
	view, err := h.companies.Get(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	png, err := infrastructure.QRCodePNG(view.AppKey)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
