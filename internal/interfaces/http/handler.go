package http

import (
	"errors"
	"net/http"
	"strings"

	"easy_admin/internal/entities"
	"easy_admin/internal/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps collects what the routes need
type Deps struct {
	Companies    *usecases.CompanyUsecase
	Auth         *usecases.AuthUsecase
	Access       *usecases.AccessUsecase
	Telegram     *usecases.TelegramGate
	WhatsApp     WhatsAppDevice
	Metrics      http.Handler
	Logger       *zap.Logger
	MaxBodyBytes int64
}

type Handler struct {
	auth   *usecases.AuthUsecase
	access *usecases.AccessUsecase
	logger *zap.Logger
}

func NewHandler(auth *usecases.AuthUsecase, access *usecases.AccessUsecase, logger *zap.Logger) *Handler {
	return &Handler{
		auth:   auth,
		access: access,
		logger: logger,
	}
}

func SetupRoutes(r *gin.Engine, deps Deps, middleware *Middleware) {
	h := NewHandler(deps.Auth, deps.Access, deps.Logger)
	adminHandler := NewAdminHandler(deps.Companies, deps.Auth, deps.Logger)
	dashboardHandler := NewDashboardHandler(deps.Companies, deps.Logger)
	telegramHandler := NewTelegramHandler(deps.Telegram, deps.Logger)
	whatsAppHandler := NewWhatsAppHandler(deps.WhatsApp, deps.Logger)

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	r.Use(middleware.RequestLogger())
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(maxBody))
	r.Use(middleware.CORSMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	// Chatbot access gate
	r.POST("/webhook/whatsapp", h.HandleWhatsAppMessage)
	r.POST("/webhook/web", h.HandleWebMessage)
	r.POST("/webhook/telegram", telegramHandler.HandleUpdate)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", h.Login)
	}

	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired())
	admin.Use(middleware.RoleRequired(entities.RolePlatformAdmin))
	admin.Use(middleware.RateLimitPerUser(5, 20))
	{
		adminHandler.RegisterRoutes(admin)
		whatsAppHandler.RegisterRoutes(admin)
	}

	company := r.Group("/api/company")
	company.Use(middleware.AuthRequired())
	company.Use(middleware.RoleRequired(entities.RoleCompanyAdmin))
	company.Use(middleware.RateLimitPerUser(5, 10))
	{
		dashboardHandler.RegisterRoutes(company)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string               `json:"email"`
		Password string               `json:"senha"`
		Role     entities.AccountRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if req.Role != "" && !req.Role.Valid() {
		badRequest(c)
		return
	}

	token, account, err := h.auth.Login(c.Request.Context(), SanitizeString(req.Email), req.Password, req.Role)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "account": account})
}

type inboundMessage struct {
	From    string `json:"from" binding:"required"`
	Content string `json:"content"`
}

// HandleWhatsAppMessage accepts a sender JID or phone and returns the access decision
func (h *Handler) HandleWhatsAppMessage(c *gin.Context) {
	h.handleInbound(c, usecases.PlatformWhatsApp)
}

func (h *Handler) HandleWebMessage(c *gin.Context) {
	h.handleInbound(c, usecases.PlatformWeb)
}

func (h *Handler) handleInbound(c *gin.Context, platform string) {
	var payload inboundMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c)
		return
	}

	msg := entities.Message{
		From:     strings.TrimSpace(payload.From),
		Content:  TruncateString(SanitizeString(payload.Content), MaxContentLength),
		Platform: platform,
	}
	decision, err := h.access.Authorize(c.Request.Context(), msg)
	if err != nil {
		if !errors.Is(err, entities.ErrRateLimited) {
			h.logger.Error("access check failed", zap.String("platform", platform), zap.Error(err))
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}
