package logger

import (
	"fmt"
	"strings"

	"go.temporal.io/sdk/log"
)

// TemporalAdapter направляет логи SDK Temporal в Logger сервиса
type TemporalAdapter struct {
	l *Logger
}

var _ log.Logger = (*TemporalAdapter)(nil)

// NewTemporalAdapter оборачивает логгер для client.Options.Logger
func NewTemporalAdapter(l *Logger) *TemporalAdapter {
	return &TemporalAdapter{l: l}
}

func (a *TemporalAdapter) Debug(msg string, keyvals ...interface{}) {
	a.l.Debug("temporal: %s%s", msg, formatKeyvals(keyvals))
}

func (a *TemporalAdapter) Info(msg string, keyvals ...interface{}) {
	a.l.Info("temporal: %s%s", msg, formatKeyvals(keyvals))
}

func (a *TemporalAdapter) Warn(msg string, keyvals ...interface{}) {
	a.l.Warn("temporal: %s%s", msg, formatKeyvals(keyvals))
}

func (a *TemporalAdapter) Error(msg string, keyvals ...interface{}) {
	a.l.Error("temporal: %s%s", msg, formatKeyvals(keyvals))
}

// formatKeyvals превращает пары ключ-значение в " key=value key2=value2"
func formatKeyvals(keyvals []interface{}) string {
	if len(keyvals) == 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 < len(keyvals) {
			fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
		} else {
			fmt.Fprintf(&b, " %v", keyvals[i])
		}
	}
	return b.String()
}
