package gym

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the operational logger and a cleanup function that flushes
// it. The interactive menu owns stdout, so log output goes to a rotating file
// instead of the terminal.
func NewLogger(filename string) (*zap.Logger, func()) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	ws := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	})

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, zapcore.InfoLevel)
	logger := zap.New(core)

	cleanup := func() {
		_ = logger.Sync()
	}
	return logger, cleanup
}
