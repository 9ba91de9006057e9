package logger

import (
	"os"

	"bookstore_api/internal/pkg/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 全局日志实例，未初始化前为 Nop
var Log = zap.NewNop()

// InitLogger 根据配置初始化 zap，开启文件输出时使用 lumberjack 做日志切割
func InitLogger(cfg config.LogConfig) error {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.OutputPaths = []string{"stdout"}

	var l *zap.Logger
	if cfg.FileEnable {
		rotate := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    64, // MB
			MaxBackups: 7,
			MaxAge:     7, // 天
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(rotate),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		l = zap.New(core, zap.AddCaller())
	} else {
		l, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			return err
		}
	}

	Log = l
	zap.ReplaceGlobals(l)
	return nil
}

// Sync 刷新缓冲
func Sync() {
	_ = Log.Sync()
}
