package account

import (
	"context"

	"github.com/jwhong1020/LabCalc/pkg/repo/model"
)

type LoginReq struct {
	Name string `json:"name" binding:"required"`
}

type LoginResp struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

type Service interface {
	Login(ctx context.Context, req *LoginReq) (*LoginResp, error)
	Me(ctx context.Context) (*model.UserData, error)
}
