package usecases

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"easy_admin/internal/entities"
	"easy_admin/internal/infrastructure"
)

type sentReply struct {
	to       string
	text     string
	keyboard any
}

type fakeReplier struct {
	replies []sentReply
}

func (f *fakeReplier) Enabled() bool { return true }

func (f *fakeReplier) SendMessageWithKeyboard(to, content string, keyboard any) error {
	f.replies = append(f.replies, sentReply{to: to, text: content, keyboard: keyboard})
	return nil
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID},
		Text: text,
	}}
}

func contactUpdate(chatID, contactUser int64, phone string) tgbotapi.Update {
	u := textUpdate(chatID, "")
	u.Message.Contact = &tgbotapi.Contact{PhoneNumber: phone, UserID: contactUser}
	return u
}

func newGate(t *testing.T, limiter *infrastructure.MessageRateLimiter) (*TelegramGate, *fakeReplier, accessFixture) {
	t.Helper()
	f := newAccessFixture(t, limiter)
	bot := &fakeReplier{}
	return NewTelegramGate(f.uc, bot, infrastructure.NewContactPrompts(time.Hour), zap.NewNop()), bot, f
}

func TestTelegramGateAsksForContactOnce(t *testing.T) {
	gate, bot, _ := newGate(t, nil)
	ctx := context.Background()

	res, err := gate.HandleUpdate(ctx, textUpdate(10, "oi"))
	require.NoError(t, err)
	assert.Equal(t, TelegramContactRequested, res.Status)

	res, err = gate.HandleUpdate(ctx, textUpdate(10, "alô?"))
	require.NoError(t, err)
	assert.Equal(t, TelegramContactRequested, res.Status)

	require.Len(t, bot.replies, 1)
	assert.Equal(t, "10", bot.replies[0].to)
	assert.Equal(t, MsgShareContact, bot.replies[0].text)
	assert.IsType(t, tgbotapi.ReplyKeyboardMarkup{}, bot.replies[0].keyboard)
}

func TestTelegramGateAuthorizesContact(t *testing.T) {
	gate, bot, f := newGate(t, nil)
	company := f.company(t, entities.CompanyActive, true, "11999999999", entities.ActivityActive)

	res, err := gate.HandleUpdate(context.Background(), contactUpdate(10, 10, "+55 11 99999-9999"))
	require.NoError(t, err)
	require.NotNil(t, res.Decision)
	assert.True(t, res.Decision.Allowed)
	assert.Equal(t, company.ID, res.Decision.CompanyID)

	require.Len(t, bot.replies, 1)
	assert.Equal(t, MsgAllowed, bot.replies[0].text)
	assert.IsType(t, tgbotapi.ReplyKeyboardRemove{}, bot.replies[0].keyboard)
}

func TestTelegramGateDeniesUnknownAndForeignContacts(t *testing.T) {
	gate, bot, _ := newGate(t, nil)
	ctx := context.Background()

	res, err := gate.HandleUpdate(ctx, contactUpdate(10, 10, "11999999999"))
	require.NoError(t, err)
	assert.False(t, res.Decision.Allowed)
	assert.Equal(t, ReasonUnknownPhone, res.Decision.Reason)

	res, err = gate.HandleUpdate(ctx, contactUpdate(10, 99, "11999999999"))
	require.NoError(t, err)
	assert.Equal(t, ReasonForeignContact, res.Decision.Reason)

	require.Len(t, bot.replies, 2)
	assert.Equal(t, MsgDenied, bot.replies[1].text)
}

func TestTelegramGateRateLimited(t *testing.T) {
	limiter := infrastructure.NewMessageRateLimiter(0.001, 1)
	defer limiter.Stop()
	gate, bot, _ := newGate(t, limiter)
	ctx := context.Background()

	_, err := gate.HandleUpdate(ctx, contactUpdate(10, 10, "11999999999"))
	require.NoError(t, err)
	_, err = gate.HandleUpdate(ctx, contactUpdate(10, 10, "11999999999"))
	assert.ErrorIs(t, err, entities.ErrRateLimited)
	assert.Equal(t, MsgRateLimited, bot.replies[len(bot.replies)-1].text)
}

func TestTelegramGateIgnoresNonMessages(t *testing.T) {
	gate, bot, _ := newGate(t, nil)

	res, err := gate.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 1})
	require.NoError(t, err)
	assert.Equal(t, TelegramIgnored, res.Status)
	assert.Empty(t, bot.replies)
}

func TestWhatsAppReply(t *testing.T) {
	f := newAccessFixture(t, nil)
	f.company(t, entities.CompanyActive, true, "11999999999", entities.ActivityActive)
	ctx := context.Background()

	assert.Empty(t, f.uc.WhatsAppReply(ctx, entities.Message{From: "5511999999999@s.whatsapp.net", Platform: PlatformWhatsApp}))
	assert.Equal(t, MsgDenied, f.uc.WhatsAppReply(ctx, entities.Message{From: "5511888888888@s.whatsapp.net", Platform: PlatformWhatsApp}))
}
