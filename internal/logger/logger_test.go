package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name          string
		level         string
		expectedError bool
		expectedLevel zapcore.Level
	}{
		{name: "debug", level: "debug", expectedLevel: zapcore.DebugLevel},
		{name: "info", level: "info", expectedLevel: zapcore.InfoLevel},
		{name: "error", level: "error", expectedLevel: zapcore.ErrorLevel},
		{name: "invalid level", level: "loud", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			previous := Logger
			defer func() { Logger = previous }()

			err := Init(tt.level)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, previous, Logger)
				return
			}
			assert.NoError(t, err)
			assert.True(t, Logger.Core().Enabled(tt.expectedLevel))
			if tt.expectedLevel > zapcore.DebugLevel {
				assert.False(t, Logger.Core().Enabled(tt.expectedLevel-1))
			}
		})
	}
}
