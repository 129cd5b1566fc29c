package utils

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		logger, err := NewLogger(debug)
		if err != nil {
			t.Fatalf("NewLogger(%t) error: %v", debug, err)
		}
		if logger == nil {
			t.Fatalf("NewLogger(%t) returned nil logger", debug)
		}
		if got := logger.Core().Enabled(zapcore.DebugLevel); got != debug {
			t.Errorf("NewLogger(%t): debug level enabled = %t", debug, got)
		}
		_ = logger.Sync()
	}
}
