package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/redis/go-redis/extra/rediscmd/v9"
	r "github.com/redis/go-redis/v9"
)

type Redis struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func initRedis(conf *Redis) (*r.Client, error) {
	client := r.NewClient(&r.Options{
		Addr:         fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Password:     conf.Password,
		DB:           conf.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     20,
	})
	client.AddHook(logHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// logHook logs slow or failing commands; redis.Nil misses are not errors.
type logHook struct{}

func (logHook) DialHook(next r.DialHook) r.DialHook {
	return next
}

func (logHook) ProcessHook(next r.ProcessHook) r.ProcessHook {
	return func(ctx context.Context, cmd r.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, r.Nil) {
			logger.Warnf(ctx, "redis %s fail cost: %s err: %+v",
				rediscmd.CmdString(cmd), time.Since(start), err)
		}
		return err
	}
}

func (logHook) ProcessPipelineHook(next r.ProcessPipelineHook) r.ProcessPipelineHook {
	return func(ctx context.Context, cmds []r.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, r.Nil) {
			summary, _ := rediscmd.CmdsString(cmds)
			logger.Warnf(ctx, "redis pipeline %s fail cost: %s err: %+v",
				summary, time.Since(start), err)
		}
		return err
	}
}
