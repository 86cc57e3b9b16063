package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Logger is a key-value logger. Values under secret-looking keys are redacted.
type Logger struct {
	sugar *zap.SugaredLogger
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", ModeProduction:
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	built, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &Logger{sugar: built.Sugar()}, nil
}

func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (logger *Logger) Sync() {
	_ = logger.sugar.Sync()
}

func (logger *Logger) Debug(msg string, keysAndValues ...any) {
	logger.sugar.Debugw(msg, redact(keysAndValues)...)
}

func (logger *Logger) Info(msg string, keysAndValues ...any) {
	logger.sugar.Infow(msg, redact(keysAndValues)...)
}

func (logger *Logger) Warn(msg string, keysAndValues ...any) {
	logger.sugar.Warnw(msg, redact(keysAndValues)...)
}

func (logger *Logger) Error(msg string, keysAndValues ...any) {
	logger.sugar.Errorw(msg, redact(keysAndValues)...)
}

func (logger *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugar: logger.sugar.With(redact(keysAndValues)...)}
}

// Printf lets the logger back gorm's slow query logger.
func (logger *Logger) Printf(format string, args ...any) {
	logger.sugar.Warnf(strings.TrimSpace(format), args...)
}

func redact(keysAndValues []any) []any {
	if len(keysAndValues) == 0 {
		return keysAndValues
	}
	out := make([]any, 0, len(keysAndValues))
	for index := 0; index < len(keysAndValues); index += 2 {
		if index == len(keysAndValues)-1 {
			out = append(out, keysAndValues[index])
			break
		}
		key := fmt.Sprint(keysAndValues[index])
		value := keysAndValues[index+1]
		if isSecretKey(key) {
			value = "[REDACTED]"
		}
		out = append(out, key, value)
	}
	return out
}

func isSecretKey(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	for _, marker := range []string{"password", "token", "secret", "api_key", "apikey", "cookie", "authorization"} {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
