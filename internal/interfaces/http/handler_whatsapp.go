package http

import (
	"net/http"

	"easy_admin/internal/infrastructure"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WhatsAppDevice is the linked-device view the admin console shows
type WhatsAppDevice interface {
	GetQR() string
	IsLoggedIn() bool
	IsConnected() bool
	GetPhoneNumber() string
}

type WhatsAppHandler struct {
	device WhatsAppDevice
	logger *zap.Logger
}

func NewWhatsAppHandler(device WhatsAppDevice, logger *zap.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{
		device: device,
		logger: logger,
	}
}

func (h *WhatsAppHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/whatsapp/status", h.Status)
	rg.GET("/whatsapp/qr", h.QR)
}

func (h *WhatsAppHandler) Status(c *gin.Context) {
	if h.device == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled":   true,
		"logged_in": h.device.IsLoggedIn(),
		"connected": h.device.IsConnected(),
		"phone":     h.device.GetPhoneNumber(),
		"pending":   h.device.GetQR() != "",
	})
}

// QR renders the pending pairing code as a PNG
func (h *WhatsAppHandler) QR(c *gin.Context) {
	if h.device == nil || h.device.GetQR() == "" {
		abortJSON(c, http.StatusNotFound, "not_found", "Nenhum QR code pendente.")
		return
	}
	png, err := infrastructure.QRCodePNG(h.device.GetQR())
	if err != nil {
		h.logger.Error("QR encode failed", zap.Error(err))
		abortJSON(c, http.StatusInternalServerError, "internal_error", "Falha ao gerar QR code.")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
