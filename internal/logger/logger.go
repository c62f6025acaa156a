package logger

import (
	"ecshop/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// prodはJSON、devは読みやすい形式。レベルはLOG_LEVEL
func New(cfg config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.GoEnv == "prod" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build(zap.Fields(zap.String("service", "ecshop")))
}
