package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InboundHandler answers one inbound chat message; an empty reply sends nothing
type InboundHandler func(ctx context.Context, from, content string) string

// WhatsAppGateway runs the platform's single linked WhatsApp device and
// passes every direct message through an InboundHandler.
type WhatsAppGateway struct {
	client *whatsmeow.Client
	handle InboundHandler
	logger *zap.Logger

	qrCode string
	qrLock sync.RWMutex
}

func NewWhatsAppGateway(ctx context.Context, dbPath string, handle InboundHandler, logger *zap.Logger) (*WhatsAppGateway, error) {
	container, err := sqlstore.New(ctx, "sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)", NewWALogger(logger.Named("whatsapp.db")))
	if err != nil {
		return nil, fmt.Errorf("failed to open device store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	g := &WhatsAppGateway{
		client: whatsmeow.NewClient(deviceStore, NewWALogger(logger.Named("whatsapp"))),
		handle: handle,
		logger: logger,
	}
	g.client.AddEventHandler(g.onEvent)
	return g, nil
}

// Connect links a new device through a QR code or resumes the stored session
func (g *WhatsAppGateway) Connect(ctx context.Context) error {
	if g.client.Store.ID != nil {
		if err := g.client.Connect(); err != nil {
			return err
		}
		g.logger.Info("WhatsApp connected", zap.String("phone", g.client.Store.ID.User))
		return nil
	}

	qrChan, err := g.client.GetQRChannel(ctx)
	if err != nil {
		return err
	}
	if err := g.client.Connect(); err != nil {
		return err
	}
	go g.watchQR(qrChan)
	return nil
}

func (g *WhatsAppGateway) watchQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		if evt.Event == whatsmeow.QRChannelEventCode {
			g.qrLock.Lock()
			g.qrCode = evt.Code
			g.qrLock.Unlock()
			g.logger.Info("WhatsApp QR code refreshed")
			continue
		}
		g.logger.Info("WhatsApp login event", zap.String("event", evt.Event))
		if evt.Event == whatsmeow.QRChannelSuccess.Event {
			g.qrLock.Lock()
			g.qrCode = ""
			g.qrLock.Unlock()
		}
	}
}

// GetQR returns the pending pairing code, empty once linked
func (g *WhatsAppGateway) GetQR() string {
	g.qrLock.RLock()
	defer g.qrLock.RUnlock()
	return g.qrCode
}

func (g *WhatsAppGateway) IsLoggedIn() bool {
	return g.client.Store.ID != nil
}

func (g *WhatsAppGateway) IsConnected() bool {
	return g.client.IsConnected() && g.client.Store.ID != nil
}

// GetPhoneNumber returns the linked device's number
func (g *WhatsAppGateway) GetPhoneNumber() string {
	if g.client.Store.ID == nil {
		return ""
	}
	return g.client.Store.ID.User
}

func (g *WhatsAppGateway) Disconnect() {
	g.client.Disconnect()
}

func (g *WhatsAppGateway) onEvent(evt any) {
	msg, ok := evt.(*events.Message)
	if !ok {
		return
	}
	from, content, ok := ParseWhatsAppMessage(msg)
	if !ok {
		return
	}

	ctx := context.Background()
	reply := g.handle(ctx, from, content)
	if reply == "" {
		return
	}
	if err := g.send(ctx, msg.Info.Chat, reply); err != nil {
		g.logger.Warn("whatsapp reply failed", zap.String("chat", msg.Info.Chat.String()), zap.Error(err))
	}
}

func (g *WhatsAppGateway) send(ctx context.Context, to types.JID, content string) error {
	_, err := g.client.SendMessage(ctx, to, &waProto.Message{
		Conversation: &content,
	})
	return err
}

// ParseWhatsAppMessage extracts sender JID and text from a direct message.
// Own messages and group traffic are skipped.
func ParseWhatsAppMessage(evt *events.Message) (string, string, bool) {
	if evt == nil || evt.Info.IsFromMe || evt.Info.IsGroup {
		return "", "", false
	}
	content := evt.Message.GetConversation()
	if content == "" {
		content = evt.Message.GetExtendedTextMessage().GetText()
	}
	return evt.Info.Sender.ToNonAD().String(), content, true
}

// waLogger routes whatsmeow's logging into zap
type waLogger struct {
	s *zap.SugaredLogger
}

func NewWALogger(logger *zap.Logger) waLog.Logger {
	return waLogger{s: logger.Sugar()}
}

func (l waLogger) Errorf(msg string, args ...interface{}) { l.s.Errorf(msg, args...) }
func (l waLogger) Warnf(msg string, args ...interface{})  { l.s.Warnf(msg, args...) }
func (l waLogger) Infof(msg string, args ...interface{})  { l.s.Infof(msg, args...) }
func (l waLogger) Debugf(msg string, args ...interface{}) { l.s.Debugf(msg, args...) }

func (l waLogger) Sub(module string) waLog.Logger {
	return waLogger{s: l.s.Named(module)}
}
