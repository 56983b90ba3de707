package monitor

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/d60-Lab/microblog/config"
)

// InitSentry 初始化 sentry；DSN 为空时不启用，返回的 flush 总是可调用
func InitSentry(cfg config.SentryConfig, release string) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}
