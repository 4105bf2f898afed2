package auth

import (
	"context"
	"sync"
	"time"

	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/sethvargo/go-envconfig"
)

// Config is read straight from the environment, separate from the viper
// config: the secret must never pass through config dumps.
type Config struct {
	Secret   string        `env:"AUTH_SECRET, default=labcalc-dev-secret"`
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL, default=72h"`
}

var (
	authConfig *Config
	authOnce   sync.Once
	USERKEY    = "AUTH_USER_KEY"
)

func GetAuthConfig() *Config {
	authOnce.Do(func() {
		authConfig = &Config{}
		if err := envconfig.Process(context.Background(), authConfig); err != nil {
			logger.Errorf(context.Background(), "process auth env err: %+v", err)
		}
	})
	return authConfig
}
