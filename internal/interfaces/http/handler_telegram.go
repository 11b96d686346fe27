package http

import (
	"net/http"

	"easy_admin/internal/usecases"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramHandler receives Bot API webhook updates
type TelegramHandler struct {
	gate   *usecases.TelegramGate
	logger *zap.Logger
}

func NewTelegramHandler(gate *usecases.TelegramGate, logger *zap.Logger) *TelegramHandler {
	return &TelegramHandler{
		gate:   gate,
		logger: logger,
	}
}

// HandleUpdate always answers 200 for well-formed updates so Telegram does not redeliver
func (h *TelegramHandler) HandleUpdate(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c)
		return
	}

	res, err := h.gate.HandleUpdate(c.Request.Context(), update)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if res.Decision != nil {
		c.JSON(http.StatusOK, res.Decision)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": res.Status})
}
