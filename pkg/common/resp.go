package common

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
)

type Error struct {
	Msg string `json:"msg"`
}

type Resp struct {
	Code  code.Code `json:"code"`
	Error *Error    `json:"error,omitempty"`
	Data  any       `json:"data,omitempty"`
}

// Reply writes the shared envelope. A nil err replies Success with the
// optional data payload, anything else is routed through ReplyErr.
func Reply(ctx *gin.Context, err error, data ...any) {
	if err != nil {
		ReplyErr(ctx, err)
		return
	}
	resp := &Resp{Code: code.Success}
	if len(data) > 0 {
		resp.Data = data[0]
	}
	ctx.JSON(http.StatusOK, resp)
}

func ReplyErr(ctx *gin.Context, err error, msgs ...string) {
	c, msg := code.FromError(err)
	if len(msgs) > 0 {
		msg = msg + ": " + strings.Join(msgs, ", ")
	}
	ctx.JSON(http.StatusOK, &Resp{
		Code:  c,
		Error: &Error{Msg: msg},
	})
}
