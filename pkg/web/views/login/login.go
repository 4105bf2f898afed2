package login

import (
	"github.com/gin-gonic/gin"
	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	ac "github.com/jwhong1020/LabCalc/pkg/core/account"
	impl "github.com/jwhong1020/LabCalc/pkg/core/account/account"
	"github.com/jwhong1020/LabCalc/pkg/middleware/auth"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
)

type Login struct {
	aService ac.Service
}

func NewLogin() *Login {
	return &Login{
		aService: impl.NewAccount(),
	}
}

// Login signs a workbench token for the name typed into the identity box.
// The token also lands in a cookie so the form and the live channel pick it
// up without extra wiring.
func (l *Login) Login(ctx *gin.Context) {
	req := &ac.LoginReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse Login param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := l.aService.Login(ctx, req)
	if err != nil {
		common.ReplyErr(ctx, err)
		return
	}

	isSecure := ctx.Request.TLS != nil || ctx.GetHeader("X-Forwarded-Proto") == "https"
	ttl := int(auth.GetAuthConfig().TokenTTL.Seconds())
	ctx.SetCookie("access_token", resp.Token, ttl, "/", "", isSecure, false)
	common.Reply(ctx, nil, resp)
}

func (l *Login) Me(ctx *gin.Context) {
	resp, err := l.aService.Me(ctx)
	common.Reply(ctx, err, resp)
}
