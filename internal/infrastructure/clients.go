package infrastructure

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// telegramSender is the part of *tgbotapi.BotAPI the notifier needs
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier replies to Telegram chats.
type TelegramNotifier struct {
	bot    telegramSender
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewTelegramNotifier connects to the Bot API. An invalid token disables
// Telegram replies instead of failing startup.
func NewTelegramNotifier(token string, logger *zap.Logger) *TelegramNotifier {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Warn("Telegram bot token issue, Telegram replies disabled", zap.Error(err))
		return &TelegramNotifier{logger: logger}
	}
	logger.Info("Telegram bot authorized", zap.String("username", bot.Self.UserName))
	return &TelegramNotifier{bot: bot, api: bot, logger: logger}
}

func (t *TelegramNotifier) Enabled() bool {
	return t != nil && t.bot != nil
}

func (t *TelegramNotifier) SendMessage(to, content string) error {
	return t.SendMessageWithKeyboard(to, content, nil)
}

// SendMessageWithKeyboard sends content with an optional reply markup
func (t *TelegramNotifier) SendMessageWithKeyboard(to, content string, keyboard any) error {
	if !t.Enabled() {
		return fmt.Errorf("telegram bot not configured")
	}
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", to, err)
	}

	msg := tgbotapi.NewMessage(chatID, content)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("Telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}
