package telegram

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SijmenSchoon/pimpybot/internal/logging"
)

// Dispatcher handles one update at a time. Updates are dispatched
// sequentially: a handler runs to completion before the next update is
// offered, so handlers never race each other over shared state.
type Dispatcher interface {
	Dispatch(ctx context.Context, update *Update)
}

// Transport runs the long-polling loop and hands updates to a Dispatcher.
type Transport struct {
	client     *Client
	dispatcher Dispatcher
	offset     int64
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// NewTransport creates a new polling transport.
func NewTransport(client *Client, dispatcher Dispatcher) *Transport {
	return &Transport{
		client:     client,
		dispatcher: dispatcher,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the long-polling loop in a goroutine.
func (t *Transport) Start(ctx context.Context) {
	t.wg.Add(1)
	go t.pollLoop(ctx)
}

// Stop stops the polling loop and waits for the in-flight update to finish.
func (t *Transport) Stop() {
	close(t.stopCh)
	t.wg.Wait()
}

// pollLoop continuously fetches and dispatches updates.
func (t *Transport) pollLoop(ctx context.Context) {
	defer t.wg.Done()

	logging.WithComponent("telegram").Debug("Transport poll loop started")

	for {
		select {
		case <-ctx.Done():
			logging.WithComponent("telegram").Debug("Transport poll loop stopped")
			return
		case <-t.stopCh:
			logging.WithComponent("telegram").Debug("Transport poll loop stopped")
			return
		default:
			t.fetchAndDispatch(ctx)
		}
	}
}

// fetchAndDispatch fetches updates from Telegram and dispatches them in order.
func (t *Transport) fetchAndDispatch(ctx context.Context) {
	updates, err := t.client.GetUpdates(ctx, t.offset, 30)
	if err != nil {
		if ctx.Err() == nil {
			logging.WithComponent("telegram").Warn("Error fetching updates", slog.Any("error", err))
		}
		time.Sleep(time.Second)
		return
	}

	for _, update := range updates {
		t.dispatcher.Dispatch(ctx, update)

		// Acknowledge the update so it is not delivered again.
		if update.UpdateID >= t.offset {
			t.offset = update.UpdateID + 1
		}
	}
}
