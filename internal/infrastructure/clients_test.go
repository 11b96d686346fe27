package infrastructure

import (
	"bytes"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramNotifierSend(t *testing.T) {
	bot := &fakeBot{}
	n := &TelegramNotifier{bot: bot, logger: zap.NewNop()}

	keyboard := tgbotapi.NewOneTimeReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact("share")),
	)
	require.NoError(t, n.SendMessageWithKeyboard("42", "hello", keyboard))
	require.Len(t, bot.sent, 1)

	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, keyboard, msg.ReplyMarkup)

	assert.Error(t, n.SendMessage("not-a-chat", "x"))
}

func TestTelegramNotifierErrors(t *testing.T) {
	var disabled *TelegramNotifier
	assert.False(t, disabled.Enabled())
	assert.Error(t, (&TelegramNotifier{logger: zap.NewNop()}).SendMessage("1", "x"))

	n := &TelegramNotifier{bot: &fakeBot{err: errors.New("blocked")}, logger: zap.NewNop()}
	assert.EqualError(t, n.SendMessage("1", "x"), "blocked")
}

func TestQRCodePNG(t *testing.T) {
	png, err := QRCodePNG("easy_1234")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = QRCodePNG("")
	assert.Error(t, err)
}
