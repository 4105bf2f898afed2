package events

import (
	"context"
	"encoding/json"
	"sync"

	r "github.com/redis/go-redis/v9"

	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/core/notify"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/jwhong1020/LabCalc/pkg/middleware/redis"
	"github.com/jwhong1020/LabCalc/pkg/utils"
)

// msgEvents fans entity-change events out through redis pub/sub so every
// api replica sees mutations made on any of them.
type msgEvents struct {
	rClient *r.Client

	mu       sync.RWMutex
	handlers map[notify.Action][]notify.HandleFunc
	subs     map[notify.Action]*r.PubSub
}

var (
	once sync.Once
	ins  *msgEvents
)

func NewEvents() notify.MsgCenter {
	once.Do(func() {
		ins = &msgEvents{
			rClient:  redis.GetClient(),
			handlers: map[notify.Action][]notify.HandleFunc{},
			subs:     map[notify.Action]*r.PubSub{},
		}
	})
	return ins
}

func (e *msgEvents) Registry(ctx context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.handlers[msgName] = append(e.handlers[msgName], handleFunc)
	if _, ok := e.subs[msgName]; ok {
		return nil
	}

	sub := e.rClient.Subscribe(ctx, utils.EventChannel(string(msgName)))
	e.subs[msgName] = sub
	utils.SafelyGo(func() {
		e.dispatch(msgName, sub)
	}, func(err error) {
		logger.Errorf(ctx, "event dispatch stopped: %+v", err)
	})
	return nil
}

func (e *msgEvents) dispatch(msgName notify.Action, sub *r.PubSub) {
	ctx := context.Background()
	for msg := range sub.Channel() {
		e.mu.RLock()
		handlers := make([]notify.HandleFunc, len(e.handlers[msgName]))
		copy(handlers, e.handlers[msgName])
		e.mu.RUnlock()

		for _, fn := range handlers {
			if err := fn(ctx, msg.Payload); err != nil {
				logger.Errorf(ctx, "handle event %s err: %+v", msgName, err)
			}
		}
	}
}

func (e *msgEvents) Broadcast(ctx context.Context, msg *notify.SendMsg) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return code.NotifyErr.WithErr(err)
	}
	if err := e.rClient.Publish(ctx, utils.EventChannel(string(msg.Channel)), string(b)).Err(); err != nil {
		logger.Errorf(ctx, "broadcast %s err: %+v", msg.Channel, err)
		return code.NotifyErr.WithErr(err)
	}
	return nil
}

func (e *msgEvents) Close(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, sub := range e.subs {
		_ = sub.Close()
	}
	e.subs = map[notify.Action]*r.PubSub{}
	return nil
}
