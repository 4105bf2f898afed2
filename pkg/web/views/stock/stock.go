package stock

import (
	"github.com/gin-gonic/gin"
	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/core/stock"
	impl "github.com/jwhong1020/LabCalc/pkg/core/stock/stock"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
)

type Handle struct {
	sService stock.Service
}

func NewStockHandle() *Handle {
	return &Handle{
		sService: impl.NewStock(),
	}
}

func (h *Handle) CreateStock(ctx *gin.Context) {
	req := &stock.CreateStockReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse CreateStock param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.sService.CreateStock(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) ListStocks(ctx *gin.Context) {
	req := &stock.ListStockReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse ListStocks param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.sService.ListStocks(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) GetStock(ctx *gin.Context) {
	req := &stock.StockUUIDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse GetStock param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.sService.GetStock(ctx, req.UUID)
	common.Reply(ctx, err, resp)
}

func (h *Handle) UpdateStock(ctx *gin.Context) {
	uriReq := &stock.StockUUIDReq{}
	if err := ctx.ShouldBindUri(uriReq); err != nil {
		logger.Errorf(ctx, "parse UpdateStock uri err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req := &stock.UpdateStockReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse UpdateStock param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req.UUID = uriReq.UUID
	resp, err := h.sService.UpdateStock(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) DeleteStock(ctx *gin.Context) {
	req := &stock.StockUUIDReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse DeleteStock param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	err := h.sService.DeleteStock(ctx, req.UUID)
	common.Reply(ctx, err)
}

func (h *Handle) Lookup(ctx *gin.Context) {
	req := &stock.LookupReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse Lookup param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.sService.Lookup(ctx, req)
	common.Reply(ctx, err, resp)
}
