package infrastructure

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// updateSource is the long-polling half of *tgbotapi.BotAPI
type updateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TelegramPoller pulls updates with getUpdates for deployments that cannot
// expose the webhook. Updates are handled one at a time in arrival order.
type TelegramPoller struct {
	source  updateSource
	handle  func(ctx context.Context, update tgbotapi.Update)
	timeout int
	logger  *zap.Logger
}

func NewTelegramPoller(n *TelegramNotifier, handle func(ctx context.Context, update tgbotapi.Update), logger *zap.Logger) (*TelegramPoller, error) {
	if !n.Enabled() || n.api == nil {
		return nil, fmt.Errorf("telegram bot not configured")
	}
	return &TelegramPoller{
		source:  n.api,
		handle:  handle,
		timeout: 60,
		logger:  logger,
	}, nil
}

// Run blocks until ctx is cancelled or the update channel closes
func (p *TelegramPoller) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	updates := p.source.GetUpdatesChan(u)

	p.logger.Info("Telegram polling started")
	for {
		select {
		case <-ctx.Done():
			p.source.StopReceivingUpdates()
			p.logger.Info("Telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			p.handle(ctx, update)
		}
	}
}
