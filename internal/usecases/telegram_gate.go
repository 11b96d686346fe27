package usecases

import (
	"context"
	"errors"
	"strconv"

	"easy_admin/internal/entities"
	"easy_admin/internal/infrastructure"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Chatbot replies
const (
	MsgShareContact = "Para usar o atendimento, compartilhe seu telefone pelo botão abaixo."
	MsgAllowed      = "✅ Telefone autorizado. Pode enviar sua mensagem."
	MsgDenied       = "⛔ Este telefone não está autorizado a usar o atendimento."
	MsgRateLimited  = "⏳ Muitas mensagens. Aguarde um momento."
)

const ReasonForeignContact = "foreign_contact"

// Telegram update outcomes without an access decision
const (
	TelegramIgnored          = "ignored"
	TelegramContactRequested = "contact_requested"
)

// ChatReplier sends a chat reply with an optional reply keyboard
type ChatReplier interface {
	Enabled() bool
	SendMessageWithKeyboard(to, content string, keyboard any) error
}

// TelegramResult is the outcome of one update: either a status or a decision
type TelegramResult struct {
	Status   string
	Decision *entities.AccessDecision
}

// TelegramGate authorizes Telegram users by the phone number they share
// through the contact button.
type TelegramGate struct {
	access  *AccessUsecase
	bot     ChatReplier
	prompts *infrastructure.ContactPrompts
	logger  *zap.Logger
}

func NewTelegramGate(access *AccessUsecase, bot ChatReplier, prompts *infrastructure.ContactPrompts, logger *zap.Logger) *TelegramGate {
	return &TelegramGate{
		access:  access,
		bot:     bot,
		prompts: prompts,
		logger:  logger,
	}
}

func (g *TelegramGate) HandleUpdate(ctx context.Context, update tgbotapi.Update) (*TelegramResult, error) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return &TelegramResult{Status: TelegramIgnored}, nil
	}
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	if msg.Contact == nil {
		if g.prompts.ShouldPrompt(msg.Chat.ID) {
			g.reply(chatID, MsgShareContact, infrastructure.ContactRequestKeyboard())
		}
		return &TelegramResult{Status: TelegramContactRequested}, nil
	}
	g.prompts.Forget(msg.Chat.ID)

	// a forwarded contact card is not proof of the sender's own number
	if msg.From != nil && msg.Contact.UserID != 0 && msg.Contact.UserID != msg.From.ID {
		g.reply(chatID, MsgDenied, infrastructure.RemoveKeyboard())
		return &TelegramResult{Decision: &entities.AccessDecision{Reason: ReasonForeignContact}}, nil
	}

	decision, err := g.access.Authorize(ctx, entities.Message{
		From:     msg.Contact.PhoneNumber,
		Content:  msg.Text,
		Platform: PlatformTelegram,
	})
	if errors.Is(err, entities.ErrRateLimited) {
		g.reply(chatID, MsgRateLimited, nil)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if decision.Allowed {
		g.reply(chatID, MsgAllowed, infrastructure.RemoveKeyboard())
	} else {
		g.reply(chatID, MsgDenied, infrastructure.RemoveKeyboard())
	}
	return &TelegramResult{Decision: decision}, nil
}

// Poll adapts HandleUpdate to infrastructure.TelegramPoller
func (g *TelegramGate) Poll(ctx context.Context, update tgbotapi.Update) {
	if _, err := g.HandleUpdate(ctx, update); err != nil && !errors.Is(err, entities.ErrRateLimited) {
		g.logger.Error("telegram update failed", zap.Int("update_id", update.UpdateID), zap.Error(err))
	}
}

func (g *TelegramGate) reply(chatID, text string, keyboard any) {
	if g.bot == nil || !g.bot.Enabled() {
		return
	}
	if err := g.bot.SendMessageWithKeyboard(chatID, text, keyboard); err != nil {
		g.logger.Warn("telegram reply failed", zap.String("chat_id", chatID), zap.Error(err))
	}
}

// WhatsAppReply answers one inbound WhatsApp message. Allowed senders get no
// reply from the gate; rate-limited senders are dropped silently.
func (uc *AccessUsecase) WhatsAppReply(ctx context.Context, msg entities.Message) string {
	decision, err := uc.Authorize(ctx, msg)
	if errors.Is(err, entities.ErrRateLimited) {
		return ""
	}
	if err != nil {
		uc.logger.Error("access check failed", zap.String("platform", msg.Platform), zap.Error(err))
		return ""
	}
	if decision.Allowed {
		return ""
	}
	return MsgDenied
}
