package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	waProto "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/protobuf/proto"
)

func directMessage(text *waProto.Message) *events.Message {
	sender := types.NewJID("5511987654321", types.DefaultUserServer)
	return &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Chat:   sender,
				Sender: sender,
			},
		},
		Message: text,
	}
}

func TestParseWhatsAppMessage_Conversation(t *testing.T) {
	from, content, ok := ParseWhatsAppMessage(directMessage(&waProto.Message{Conversation: proto.String("oi")}))

	assert.True(t, ok)
	assert.Equal(t, "5511987654321@s.whatsapp.net", from)
	assert.Equal(t, "oi", content)
}

func TestParseWhatsAppMessage_ExtendedText(t *testing.T) {
	msg := directMessage(&waProto.Message{
		ExtendedTextMessage: &waProto.ExtendedTextMessage{Text: proto.String("link https://easy.com")},
	})

	_, content, ok := ParseWhatsAppMessage(msg)

	assert.True(t, ok)
	assert.Equal(t, "link https://easy.com", content)
}

func TestParseWhatsAppMessage_Skips(t *testing.T) {
	own := directMessage(&waProto.Message{Conversation: proto.String("eco")})
	own.Info.IsFromMe = true

	group := directMessage(&waProto.Message{Conversation: proto.String("grupo")})
	group.Info.IsGroup = true

	for name, evt := range map[string]*events.Message{"own": own, "group": group, "nil": nil} {
		_, _, ok := ParseWhatsAppMessage(evt)
		assert.False(t, ok, name)
	}
}

func TestParseWhatsAppMessage_MediaHasNoText(t *testing.T) {
	_, content, ok := ParseWhatsAppMessage(directMessage(&waProto.Message{}))

	assert.True(t, ok)
	assert.Empty(t, content)
}

func TestWALogger_RoutesToZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewWALogger(zap.New(core)).Sub("Client")

	log.Warnf("socket closed: %d", 1006)
	log.Debugf("ping")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "socket closed: 1006", entries[0].Message)
		assert.Equal(t, "Client", entries[0].LoggerName)
		assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	}
}
