package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// RedisLogger adapts zap.Logger to the go-redis internal logging interface
type RedisLogger struct {
	logger *zap.Logger
}

// NewRedisLogger creates a new RedisLogger adapter
func NewRedisLogger(logger *zap.Logger) *RedisLogger {
	return &RedisLogger{logger: logger}
}

// Printf logs a go-redis message at warn level
func (l *RedisLogger) Printf(ctx context.Context, format string, v ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
