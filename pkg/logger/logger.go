package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var L *zap.Logger

func init() {
	l, err := New("info")
	if err != nil {
		panic(err)
	}
	L = l
}

// New 以 production 設定建立 logger，level 解析失敗時回傳錯誤
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}

// SetLevel 依設定重建全域 logger (例如 LOG_LEVEL=debug)
func SetLevel(level string) error {
	l, err := New(level)
	if err != nil {
		return err
	}
	L = l
	return nil
}

// WithComponent 回傳帶有 component 欄位的 logger，供 service、handler、mq、worker 等使用
func WithComponent(component string) *zap.Logger {
	return L.With(zap.String("component", component))
}
