package notify

import (
	"context"

	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
)

type Action string

const (
	StockModify  Action = "stock-modify"
	PlanModify   Action = "plan-modify"
	RecordModify Action = "record-modify"
)

// SendMsg is one entity-change event. UUID names the touched row, User the
// actor, Data an optional action-specific payload.
type SendMsg struct {
	Channel   Action    `json:"action"`
	UUID      uuid.UUID `json:"uuid"`
	User      string    `json:"user"`
	Data      any       `json:"data,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

type HandleFunc func(ctx context.Context, msg string) error

type MsgCenter interface {
	Registry(ctx context.Context, msgName Action, handleFunc HandleFunc) error
	Broadcast(ctx context.Context, msg *SendMsg) error
	Close(ctx context.Context) error
}
