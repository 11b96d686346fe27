package infrastructure

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUpdates struct {
	ch      chan tgbotapi.Update
	timeout int
	stopped chan struct{}
}

func (f *fakeUpdates) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.timeout = config.Timeout
	return f.ch
}

func (f *fakeUpdates) StopReceivingUpdates() { close(f.stopped) }

func TestTelegramPollerHandlesInOrder(t *testing.T) {
	src := &fakeUpdates{ch: make(chan tgbotapi.Update, 3), stopped: make(chan struct{})}
	seen := make(chan int, 3)
	p := &TelegramPoller{
		source:  src,
		handle:  func(_ context.Context, u tgbotapi.Update) { seen <- u.UpdateID },
		timeout: 60,
		logger:  zap.NewNop(),
	}

	for i := 1; i <= 3; i++ {
		src.ch <- tgbotapi.Update{UpdateID: i}
	}
	close(src.ch)
	p.Run(context.Background())

	close(seen)
	var ids []int
	for id := range seen {
		ids = append(ids, id)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
	assert.Equal(t, 60, src.timeout)
}

func TestTelegramPollerStopsOnCancel(t *testing.T) {
	src := &fakeUpdates{ch: make(chan tgbotapi.Update), stopped: make(chan struct{})}
	p := &TelegramPoller{
		source: src,
		handle: func(context.Context, tgbotapi.Update) {},
		logger: zap.NewNop(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
	select {
	case <-src.stopped:
	default:
		t.Fatal("updates were not stopped")
	}
}

func TestNewTelegramPollerRequiresBot(t *testing.T) {
	_, err := NewTelegramPoller(nil, nil, zap.NewNop())
	require.Error(t, err)

	_, err = NewTelegramPoller(&TelegramNotifier{bot: &fakeBot{}, logger: zap.NewNop()}, nil, zap.NewNop())
	require.Error(t, err)
}
