package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/core/plan"
	impl "github.com/jwhong1020/LabCalc/pkg/core/plan/plan"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
)

type Handle struct {
	pService plan.Service
}

func NewPlanHandle() *Handle {
	return &Handle{
		pService: impl.NewPlan(),
	}
}

func (h *Handle) CreatePlan(ctx *gin.Context) {
	req := &plan.CreatePlanReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse CreatePlan param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.pService.CreatePlan(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) ListPlans(ctx *gin.Context) {
	req := &plan.ListPlanReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse ListPlans param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.pService.ListPlans(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) GetPlan(ctx *gin.Context) {
	req := &plan.PlanUUIDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse GetPlan param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.pService.GetPlan(ctx, req.UUID)
	common.Reply(ctx, err, resp)
}

func (h *Handle) UpdatePlan(ctx *gin.Context) {
	uriReq := &plan.PlanUUIDReq{}
	if err := ctx.ShouldBindUri(uriReq); err != nil {
		logger.Errorf(ctx, "parse UpdatePlan uri err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req := &plan.UpdatePlanReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse UpdatePlan param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req.UUID = uriReq.UUID
	resp, err := h.pService.UpdatePlan(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) AppendReaction(ctx *gin.Context) {
	uriReq := &plan.PlanUUIDReq{}
	if err := ctx.ShouldBindUri(uriReq); err != nil {
		logger.Errorf(ctx, "parse AppendReaction uri err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req := &plan.AppendReactionReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse AppendReaction param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req.PlanUUID = uriReq.UUID
	resp, err := h.pService.AppendReaction(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) DeleteReaction(ctx *gin.Context) {
	req := &plan.PlanUUIDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse DeleteReaction param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	err := h.pService.DeleteReaction(ctx, req.UUID)
	common.Reply(ctx, err)
}

func (h *Handle) DeletePlan(ctx *gin.Context) {
	req := &plan.PlanUUIDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse DeletePlan param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	err := h.pService.DeletePlan(ctx, req.UUID)
	common.Reply(ctx, err)
}

// ExportPlan streams the plan as a JSON attachment, lines carrying the
// trailing D.W. fill row.
func (h *Handle) ExportPlan(ctx *gin.Context) {
	req := &plan.PlanUUIDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse ExportPlan param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.pService.ExportPlan(ctx, req.UUID)
	if err != nil {
		logger.Errorf(ctx, "ExportPlan err: %+v", err)
		common.ReplyErr(ctx, err)
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Errorf(ctx, "ExportPlan marshal err: %+v", err)
		common.ReplyErr(ctx, code.ParamErr.WithErr(err))
		return
	}
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=plan_%s.json", req.UUID))
	ctx.Header("Content-Type", "application/json")
	ctx.Header("Pragma", "public")
	ctx.Header("Content-Length", fmt.Sprintf("%d", len(data)))
	reader := bytes.NewReader(data)
	ctx.DataFromReader(http.StatusOK, int64(len(data)), "application/json", reader, nil)
}
