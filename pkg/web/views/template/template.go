package template

import (
	"github.com/gin-gonic/gin"
	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/core/template"
	impl "github.com/jwhong1020/LabCalc/pkg/core/template/template"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
)

type Handle struct {
	tService template.Service
}

func NewTemplateHandle() *Handle {
	return &Handle{
		tService: impl.NewTemplate(),
	}
}

func (h *Handle) CreateTemplate(ctx *gin.Context) {
	req := &template.CreateTemplateReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse CreateTemplate param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.tService.CreateTemplate(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) ListTemplates(ctx *gin.Context) {
	req := &template.ListTemplateReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse ListTemplates param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.tService.ListTemplates(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) GetTemplate(ctx *gin.Context) {
	req := &template.TemplateUUIDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse GetTemplate param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.tService.GetTemplate(ctx, req.UUID)
	common.Reply(ctx, err, resp)
}

func (h *Handle) UpdateTemplate(ctx *gin.Context) {
	uriReq := &template.TemplateUUIDReq{}
	if err := ctx.ShouldBindUri(uriReq); err != nil {
		logger.Errorf(ctx, "parse UpdateTemplate uri err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req := &template.UpdateTemplateReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse UpdateTemplate param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req.UUID = uriReq.UUID
	resp, err := h.tService.UpdateTemplate(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) DeleteTemplate(ctx *gin.Context) {
	req := &template.TemplateUUIDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse DeleteTemplate param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	err := h.tService.DeleteTemplate(ctx, req.UUID)
	common.Reply(ctx, err)
}

// ResolveTemplate joins the template's reagent names against the current
// stocks and returns prefilled reaction lines for the form.
func (h *Handle) ResolveTemplate(ctx *gin.Context) {
	req := &template.TemplateUUIDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse ResolveTemplate param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.tService.ResolveTemplate(ctx, req.UUID)
	common.Reply(ctx, err, resp)
}
