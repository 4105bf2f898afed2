package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
	"github.com/jwhong1020/LabCalc/pkg/utils"
)

func IssueToken(name string) (string, error) {
	conf := GetAuthConfig()
	return utils.SignToken([]byte(conf.Secret), name, conf.TokenTTL)
}

func ValidateToken(ctx context.Context, token string) (*model.UserData, error) {
	conf := GetAuthConfig()
	claims, err := utils.ParseToken(token, []byte(conf.Secret))
	if err != nil {
		logger.Errorf(ctx, "token validation failed: %v", err)
		return nil, code.InvalidToken
	}
	if claims.Name == "" {
		return nil, code.InvalidToken
	}
	return &model.UserData{Name: claims.Name}, nil
}

func AuthWeb() func(ctx *gin.Context) {
	return func(ctx *gin.Context) {
		cookie, _ := ctx.Cookie("access_token")
		authHeader := ctx.GetHeader("Authorization")
		queryToken := ctx.Query("access_token")
		authHeader = utils.Or(cookie, queryToken, authHeader)
		if authHeader == "" {
			ctx.JSON(http.StatusUnauthorized, &common.Resp{
				Code:  code.UnLogin,
				Error: &common.Error{Msg: code.UnLogin.String()},
			})
			ctx.Abort()
			return
		}

		token := authHeader
		if tokens := strings.Split(authHeader, " "); len(tokens) == 2 {
			if tokens[0] != "Bearer" {
				ctx.JSON(http.StatusUnauthorized, &common.Resp{
					Code:  code.LoginFormatErr,
					Error: &common.Error{Msg: code.LoginFormatErr.String()},
				})
				ctx.Abort()
				return
			}
			token = tokens[1]
		}

		userInfo, err := ValidateToken(ctx, token)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, &common.Resp{
				Code:  code.InvalidToken,
				Error: &common.Error{Msg: code.InvalidToken.String()},
			})
			ctx.Abort()
			return
		}
		ctx.Set(USERKEY, userInfo)
		ctx.Next()
	}
}

func GetCurrentUser(ctx context.Context) *model.UserData {
	gCtx, ok := ctx.(*gin.Context)
	if !ok {
		return nil
	}
	user, exists := gCtx.Get(USERKEY)
	if !exists {
		return nil
	}
	ud, ok := user.(*model.UserData)
	if !ok {
		return nil
	}
	return ud
}
