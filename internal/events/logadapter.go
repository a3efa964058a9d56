package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/user/nextflix/internal/logger"
)

// zapAdapter 将 watermill 日志接到项目 logger
type zapAdapter struct {
	log    *logger.Logger
	fields watermill.LogFields
}

// NewLoggerAdapter 创建 watermill.LoggerAdapter
func NewLoggerAdapter(log *logger.Logger) watermill.LoggerAdapter {
	return &zapAdapter{log: log, fields: watermill.LogFields{}}
}

func (a *zapAdapter) kvs(fields watermill.LogFields) []interface{} {
	merged := a.fields.Add(fields)
	kv := make([]interface{}, 0, len(merged)*2)
	for k, v := range merged {
		kv = append(kv, k, v)
	}
	return kv
}

func (a *zapAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(a.kvs(fields), "error", err)...)
}

func (a *zapAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, a.kvs(fields)...)
}

func (a *zapAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, a.kvs(fields)...)
}

// Trace watermill 的 trace 日志量很大，降级为 debug
func (a *zapAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, a.kvs(fields)...)
}

func (a *zapAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &zapAdapter{log: a.log, fields: a.fields.Add(fields)}
}
