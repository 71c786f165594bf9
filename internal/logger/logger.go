package logger

import (
	"go.uber.org/zap"

	"nectix/internal/config"
)

// New строит zap-логгер по конфигурации: console — dev-конфиг для
// локального запуска, иначе production JSON
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Encoding == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if lvl, err := zap.ParseAtomicLevel(cfg.Level); err == nil {
		zc.Level = lvl
	}
	return zc.Build()
}
