package account

import (
	"context"
	"strings"

	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/core/account"
	"github.com/jwhong1020/LabCalc/pkg/middleware/auth"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
)

type accountImpl struct{}

func NewAccount() account.Service {
	return &accountImpl{}
}

func (a *accountImpl) Login(_ context.Context, req *account.LoginReq) (*account.LoginResp, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, code.ParamErr.WithMsg("name must not be empty")
	}

	token, err := auth.IssueToken(name)
	if err != nil {
		return nil, code.InternalErr.WithErr(err)
	}
	return &account.LoginResp{Token: token, Name: name}, nil
}

func (a *accountImpl) Me(ctx context.Context) (*model.UserData, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	return user, nil
}
