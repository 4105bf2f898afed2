package photometry

import (
	"github.com/gin-gonic/gin"
	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/core/photometry"
	impl "github.com/jwhong1020/LabCalc/pkg/core/photometry/photometry"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
)

type Handle struct {
	phService photometry.Service
}

func NewPhotometryHandle() *Handle {
	return &Handle{
		phService: impl.NewPhotometry(),
	}
}

// ComputeLabeling derives concentrations, ratio and purity from the nanodrop
// readings without saving anything.
func (h *Handle) ComputeLabeling(ctx *gin.Context) {
	req := &photometry.LabelingComputeReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse ComputeLabeling param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.phService.ComputeLabeling(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) SaveLabeling(ctx *gin.Context) {
	req := &photometry.SaveLabelingReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse SaveLabeling param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.phService.SaveLabeling(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) ListRecords(ctx *gin.Context) {
	req := &photometry.ListRecordReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse ListRecords param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.phService.ListRecords(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) GetRecord(ctx *gin.Context) {
	req := &photometry.RecordUUIDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse GetRecord param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.phService.GetRecord(ctx, req.UUID)
	common.Reply(ctx, err, resp)
}

func (h *Handle) DeleteRecord(ctx *gin.Context) {
	req := &photometry.RecordUUIDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse DeleteRecord param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	err := h.phService.DeleteRecord(ctx, req.UUID)
	common.Reply(ctx, err)
}

func (h *Handle) UpsertEpsilon(ctx *gin.Context) {
	req := &photometry.EpsilonReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse UpsertEpsilon param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.phService.UpsertEpsilon(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) ListEpsilons(ctx *gin.Context) {
	resp, err := h.phService.ListEpsilons(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) DeleteEpsilon(ctx *gin.Context) {
	req := &photometry.EpsilonKeyReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse DeleteEpsilon param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	err := h.phService.DeleteEpsilon(ctx, req)
	common.Reply(ctx, err)
}

func (h *Handle) UpsertCorrectionFactor(ctx *gin.Context) {
	req := &photometry.CorrectionFactorReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse UpsertCorrectionFactor param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.phService.UpsertCorrectionFactor(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) ListCorrectionFactors(ctx *gin.Context) {
	resp, err := h.phService.ListCorrectionFactors(ctx)
	common.Reply(ctx, err, resp)
}
