package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig определяет конфигурацию для логгера
type LoggerConfig struct {
	// Формат логов (json/console)
	Format string
	// Включить/выключить цвета для консоли
	EnableColors bool
	// Минимальный уровень (debug, info, warn, error)
	Level string
}

// InitLogger инициализирует и возвращает логгер
func InitLogger(config ...LoggerConfig) (*zap.Logger, error) {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	var zcfg zap.Config
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		if cfg.EnableColors {
			zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named("coursehub"), nil
}
