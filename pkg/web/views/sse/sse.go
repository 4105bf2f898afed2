package sse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jwhong1020/LabCalc/pkg/core/notify"
	"github.com/jwhong1020/LabCalc/pkg/core/notify/events"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
)

const (
	clientBuffer   = 16
	heartbeatEvery = 15 * time.Second
)

// Handle bridges the notify center onto server-sent event streams. Every
// mutation published on the stock, plan and record channels reaches every
// connected form.
type Handle struct {
	msgCenter notify.MsgCenter
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.RWMutex
	clients map[int64]chan string
	nextID  int64
}

func NewNotifyHandle(ctx context.Context) *Handle {
	h := &Handle{
		msgCenter: events.NewEvents(),
		done:      make(chan struct{}),
		clients:   map[int64]chan string{},
	}
	for _, action := range []notify.Action{notify.StockModify, notify.PlanModify, notify.RecordModify} {
		if err := h.msgCenter.Registry(ctx, action, h.fanout); err != nil {
			logger.Errorf(ctx, "register %s events err: %+v", action, err)
		}
	}
	return h
}

// fanout pushes one published event to every connected stream. A slow reader
// loses the event rather than block the dispatcher.
func (h *Handle) fanout(ctx context.Context, msg string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.clients {
		select {
		case ch <- msg:
		default:
			logger.Warnf(ctx, "sse client %d buffer full, dropping event", id)
		}
	}
	return nil
}

func (h *Handle) subscribe() (int64, chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan string, clientBuffer)
	h.clients[h.nextID] = ch
	return h.nextID, ch
}

func (h *Handle) unsubscribe(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Close ends every open stream and tears down the redis subscriptions
// feeding them, so a server shutdown is not held up by idle readers.
func (h *Handle) Close(ctx context.Context) {
	h.closeOnce.Do(func() {
		close(h.done)
		if err := h.msgCenter.Close(ctx); err != nil {
			logger.Errorf(ctx, "close event subscriptions err: %+v", err)
		}
	})
}

// Notify streams entity-change events until the client goes away.
func (h *Handle) Notify(ctx *gin.Context) {
	ctx.Writer.Header().Set("Content-Type", "text/event-stream")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")
	ctx.Writer.Header().Set("X-Accel-Buffering", "no")

	id, msgs := h.subscribe()
	defer h.unsubscribe(id)
	ctx.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Request.Context().Done():
			return
		case <-h.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(ctx.Writer, ": ping\n\n")
			ctx.Writer.Flush()
		case msg := <-msgs:
			fmt.Fprintf(ctx.Writer, "data: %s\n\n", msg)
			ctx.Writer.Flush()
		}
	}
}
