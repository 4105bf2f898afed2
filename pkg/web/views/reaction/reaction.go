package reaction

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/core/reaction"
	impl "github.com/jwhong1020/LabCalc/pkg/core/reaction/reaction"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
)

type Handle struct {
	rService reaction.Service
}

func NewReactionHandle(ctx context.Context) *Handle {
	return &Handle{
		rService: impl.NewReaction(ctx),
	}
}

// Compute runs the mixing table once and returns the card without writing
// anything. Saving is a separate, explicit call on the plan routes.
func (h *Handle) Compute(ctx *gin.Context) {
	req := &reaction.ComputeReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse Compute param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.rService.Compute(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Assemble(ctx *gin.Context) {
	req := &reaction.AssembleReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse Assemble param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.rService.Assemble(ctx, req)
	common.Reply(ctx, err, resp)
}

// Live upgrades to the websocket form channel. The call blocks until the
// session closes.
func (h *Handle) Live(ctx *gin.Context) {
	h.rService.Live(ctx)
}

func (h *Handle) Close(ctx context.Context) {
	h.rService.Close(ctx)
}
