package common

import (
	"encoding/json"

	"github.com/olahol/melody"

	"github.com/jwhong1020/LabCalc/pkg/common/code"
)

// WsMsgType is the client frame on the live channel. Seq is echoed back so
// the form can match results to the keystroke that produced them.
type WsMsgType struct {
	Action  string          `json:"action"`
	Seq     int64           `json:"seq"`
	MsgUUID string          `json:"msg_uuid,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type WsResp struct {
	Action  string    `json:"action"`
	Seq     int64     `json:"seq"`
	MsgUUID string    `json:"msg_uuid,omitempty"`
	Code    code.Code `json:"code"`
	Error   *Error    `json:"error,omitempty"`
	Data    any       `json:"data,omitempty"`
}

func ReplyWS(s *melody.Session, action string, seq int64, err error, data ...any) error {
	resp := &WsResp{
		Action: action,
		Seq:    seq,
	}
	c, msg := code.FromError(err)
	resp.Code = c
	if c != code.Success {
		resp.Error = &Error{Msg: msg}
	} else if len(data) > 0 {
		resp.Data = data[0]
	}

	b, mErr := json.Marshal(resp)
	if mErr != nil {
		return mErr
	}
	return s.Write(b)
}

func ReplyWSErr(s *melody.Session, action string, seq int64, err error) error {
	return ReplyWS(s, action, seq, err)
}
