package redis

import (
	"context"

	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	r "github.com/redis/go-redis/v9"
)

var redisClient *r.Client

func InitRedis(ctx context.Context, conf *Redis) {
	var err error
	redisClient, err = initRedis(conf)
	if err != nil {
		logger.Fatalf(ctx, "init redis fail err: %+v", err)
	}
}

func CloseRedis(_ context.Context) {
	if redisClient != nil {
		redisClient.Close()
	}
}

func GetClient() *r.Client {
	return redisClient
}
