package reaction

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	"github.com/panjf2000/ants/v2"
	r "github.com/redis/go-redis/v9"

	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/common/constant"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/core/calc"
	"github.com/jwhong1020/LabCalc/pkg/core/reaction"
	"github.com/jwhong1020/LabCalc/pkg/middleware/auth"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/jwhong1020/LabCalc/pkg/middleware/redis"
	"github.com/jwhong1020/LabCalc/pkg/repo"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
	sStore "github.com/jwhong1020/LabCalc/pkg/repo/stock"
	"github.com/jwhong1020/LabCalc/pkg/utils"
)

var (
	svc  *reactionImpl
	once sync.Once
)

const poolSize = 200

type reactionImpl struct {
	wsClient   *melody.Melody
	rClient    r.Cmdable
	pools      *ants.Pool
	sessionMap *haxmap.Map[string, *melody.Session]
	stockStore repo.StockRepo
}

func NewReaction(ctx context.Context) reaction.Service {
	once.Do(func() {
		wsClient := melody.New()
		wsClient.Config.MaxMessageSize = constant.MaxMessageSize
		wsClient.Config.PingPeriod = 10 * time.Second

		svc = &reactionImpl{
			wsClient:   wsClient,
			rClient:    redis.GetClient(),
			sessionMap: haxmap.New[string, *melody.Session](),
			stockStore: sStore.NewStockImpl(),
		}
		svc.pools, _ = ants.NewPool(poolSize)
		if svc.pools == nil {
			logger.Errorf(ctx, "failed to create ants pool, using default")
			svc.pools, _ = ants.NewPool(ants.DefaultAntsPoolSize)
		}
		svc.initWebSocket(ctx)
	})
	return svc
}

// Compute runs the reaction table once and returns the computed card without
// persisting anything. Lines that reference a stock uuid inherit its name and
// concentration when the form left them blank.
func (i *reactionImpl) Compute(ctx context.Context, req *reaction.ComputeReq) (*calc.ReactionResult, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	input, err := i.toCalcInput(ctx, req)
	if err != nil {
		return nil, err
	}
	return calc.ComputeReaction(input)
}

func (i *reactionImpl) Assemble(ctx context.Context, req *reaction.AssembleReq) (*calc.AssembleResult, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	return calc.Assemble(&calc.AssembleInput{
		DNAConc:      req.DNAConc,
		DNAConcUnit:  req.DNAUnit,
		DyeConc:      req.DyeConc,
		DyeConcUnit:  req.DyeUnit,
		TargetAmount: req.Amount,
		AmountUnit:   req.AmountUnit,
		Ratio:        req.Ratio,
		FinalVolume:  req.FinalVolume,
		FinalVolUnit: utils.Or(req.FinalVolUnit, "uL"),
	})
}

// Live upgrades the request to the websocket channel the reaction form keeps
// open while a card is being edited. A SetNX claim per user marks the first
// session as the editing owner; later sessions are flagged in the hello frame
// but never blocked.
func (i *reactionImpl) Live(ctx context.Context) {
	ginCtx := ctx.(*gin.Context)
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		common.ReplyErr(ginCtx, code.UnLogin)
		return
	}

	sessionID := uuid.NewV4().String()
	owner, concurrent := false, false
	ok, err := i.rClient.SetNX(ctx, utils.LiveSessionKey(user.Name), sessionID, utils.LiveSessionTTL).Result()
	switch {
	case err != nil:
		logger.Warnf(ctx, "reaction live session guard fail user: %s, err: %+v", user.Name, err)
	case ok:
		owner = true
	default:
		concurrent = true
	}

	defer func() {
		if !owner {
			return
		}
		if _, err := i.rClient.Del(context.Background(), utils.LiveSessionKey(user.Name)).Result(); err != nil {
			logger.Errorf(ctx, "reaction live release session claim fail user: %s, err: %+v", user.Name, err)
		}
	}()

	if err := i.wsClient.HandleRequestWithKeys(ginCtx.Writer, ginCtx.Request, map[string]any{
		"ctx":        ctx,
		"user":       user.Name,
		"session_id": sessionID,
		"owner":      owner,
		"concurrent": concurrent,
	}); err != nil {
		logger.Errorf(ctx, "reaction live HandleRequestWithKeys fail err: %+v", err)
	}
}

func (i *reactionImpl) initWebSocket(ctx context.Context) {
	i.wsClient.HandleConnect(func(s *melody.Session) {
		sessionCtx := s.MustGet("ctx").(*gin.Context)
		sessionID := s.MustGet("session_id").(string)
		concurrent := s.MustGet("concurrent").(bool)

		i.sessionMap.Set(sessionID, s)
		if err := common.ReplyWS(s, reaction.ActionHello, 0, nil, &reaction.HelloData{Concurrent: concurrent}); err != nil {
			logger.Errorf(sessionCtx, "reaction live hello fail session: %s, err: %+v", sessionID, err)
		}
	})

	i.wsClient.HandleClose(func(s *melody.Session, _ int, _ string) error {
		i.sessionMap.GetAndDel(s.MustGet("session_id").(string))
		return nil
	})

	i.wsClient.HandleDisconnect(func(s *melody.Session) {
		i.sessionMap.GetAndDel(s.MustGet("session_id").(string))
	})

	i.wsClient.HandleError(func(s *melody.Session, err error) {
		if errors.Is(err, melody.ErrMessageBufferFull) {
			return
		}
		if closeErr, ok := err.(*websocket.CloseError); ok {
			if closeErr.Code == websocket.CloseGoingAway {
				return
			}
		}

		if ctx, ok := s.Get("ctx"); ok {
			logger.Infof(ctx.(context.Context), "reaction live websocket HandleError keys: %+v, err: %+v", s.Keys, err)
		}
	})

	i.wsClient.HandleMessage(func(s *melody.Session, b []byte) {
		sessionCtx := s.MustGet("ctx").(*gin.Context)
		wsMsg := &common.WsMsgType{}
		if err := json.Unmarshal(b, wsMsg); err != nil {
			logger.Warnf(sessionCtx, "reaction live bad frame err: %+v", err)
			_ = common.ReplyWSErr(s, reaction.ActionResult, 0, code.ParamErr.WithMsg(err.Error()))
			return
		}

		if err := i.pools.Submit(func() {
			i.onFormMessage(sessionCtx, s, wsMsg)
		}); err != nil {
			logger.Errorf(sessionCtx, "reaction live submit compute job err: %+v", err)
			_ = common.ReplyWSErr(s, reaction.ActionResult, wsMsg.Seq, code.InternalErr.WithErr(err))
		}
	})
}

// onFormMessage answers one live frame. Every frame gets a result reply with
// the client seq echoed back; calc errors ride in the reply, the connection
// stays up.
func (i *reactionImpl) onFormMessage(ctx *gin.Context, s *melody.Session, msg *common.WsMsgType) {
	if s.MustGet("owner").(bool) {
		user := s.MustGet("user").(string)
		if err := i.rClient.Expire(ctx, utils.LiveSessionKey(user), utils.LiveSessionTTL).Err(); err != nil {
			logger.Warnf(ctx, "reaction live refresh session claim fail user: %s, err: %+v", user, err)
		}
	}

	switch msg.Action {
	case reaction.ActionCompute:
		req := &reaction.ComputeReq{}
		if err := json.Unmarshal(msg.Data, req); err != nil {
			_ = common.ReplyWSErr(s, reaction.ActionResult, msg.Seq, code.ParamErr.WithMsg(err.Error()))
			return
		}
		res, err := i.Compute(ctx, req)
		_ = common.ReplyWS(s, reaction.ActionResult, msg.Seq, err, res)
	case reaction.ActionAssemble:
		req := &reaction.AssembleReq{}
		if err := json.Unmarshal(msg.Data, req); err != nil {
			_ = common.ReplyWSErr(s, reaction.ActionResult, msg.Seq, code.ParamErr.WithMsg(err.Error()))
			return
		}
		res, err := i.Assemble(ctx, req)
		_ = common.ReplyWS(s, reaction.ActionResult, msg.Seq, err, res)
	default:
		_ = common.ReplyWSErr(s, reaction.ActionResult, msg.Seq, code.ParamErr.WithMsgf("unknown action %q", msg.Action))
	}
}

func (i *reactionImpl) toCalcInput(ctx context.Context, req *reaction.ComputeReq) (*calc.ReactionInput, error) {
	input := &calc.ReactionInput{
		FinalVolume:  req.FinalVolume,
		FinalVolUnit: utils.Or(req.FinalVolUnit, "uL"),
	}

	seen := map[uuid.UUID]*model.Stock{}
	for _, row := range req.Lines {
		line := calc.LineInput{
			Reagent:    row.Reagent,
			StockUUID:  row.StockUUID,
			StockConc:  row.StockConc,
			StockUnit:  row.StockUnit,
			TargetConc: row.TargetConc,
			TargetUnit: row.TargetUnit,
			Volume:     row.Volume,
			VolUnit:    row.VolUnit,
			Note:       row.Note,
		}
		if row.StockUUID != nil {
			st, ok := seen[*row.StockUUID]
			if !ok {
				var err error
				st, err = i.stockStore.GetStockByUUID(ctx, *row.StockUUID)
				if err != nil {
					return nil, err
				}
				seen[*row.StockUUID] = st
			}
			if line.Reagent == "" {
				line.Reagent = st.Name
			}
			if line.StockConc == 0 {
				line.StockConc = st.Conc
				line.StockUnit = st.ConcUnit
			}
		}
		input.Lines = append(input.Lines, line)
	}
	return input, nil
}

func (i *reactionImpl) Close(ctx context.Context) {
	if i.wsClient != nil {
		if err := i.wsClient.CloseWithMsg([]byte("server closing")); err != nil {
			logger.Errorf(ctx, "reaction live CloseWithMsg err: %+v", err)
		}
	}

	i.sessionMap.ForEach(func(_ string, s *melody.Session) bool {
		if !s.IsClosed() {
			_ = s.Close()
		}
		return true
	})

	if i.pools != nil {
		i.pools.Release()
	}
}
