package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

func init() {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		level,
	)

	sugar = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// normalize lets call sites pass either key-value pairs or a single bare error.
func normalize(args []any) []any {
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			return []any{"error", err}
		}
	}
	return args
}

func Debug(msg string, args ...any) {
	sugar.Debugw(msg, normalize(args)...)
}

func Info(msg string, args ...any) {
	sugar.Infow(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	sugar.Warnw(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	sugar.Errorw(msg, normalize(args)...)
}

func Fatal(msg string, args ...any) {
	sugar.Fatalw(msg, normalize(args)...)
}

// Sync flushes buffered log entries. Call before exit.
func Sync() {
	_ = sugar.Sync()
}
