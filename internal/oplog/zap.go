// Package oplog writes frontdesk operation logs through zap.
package oplog

import (
	"context"

	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const messageOperation = "frontdesk operation"

// ZapLogger implements frontdesk.OperationLogger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps logger. A nil logger discards entries.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

// LogOperation logs ok entries at info, rejections at warn and failures at error.
func (zapLogger *ZapLogger) LogOperation(_ context.Context, entry frontdesk.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("status", entry.Status),
	}
	if !entry.ReservationID.IsZero() {
		fields = append(fields, zap.String("reservation_id", entry.ReservationID.String()))
	}
	if !entry.RoomID.IsZero() {
		fields = append(fields, zap.String("room_id", entry.RoomID.String()))
	}
	if entry.Kind != "" {
		fields = append(fields, zap.String("kind", entry.Kind.String()))
	}
	if entry.Message != "" {
		fields = append(fields, zap.String("message", entry.Message))
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
	}
	zapLogger.logger.Log(levelFor(entry), messageOperation, fields...)
}

func levelFor(entry frontdesk.OperationLog) zapcore.Level {
	switch {
	case entry.Kind == frontdesk.FailureStore || entry.Kind == frontdesk.FailurePartiallyApplied:
		return zapcore.ErrorLevel
	case entry.Error != nil && entry.Kind == "":
		return zapcore.ErrorLevel
	case entry.Kind != "" || entry.Error != nil:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
