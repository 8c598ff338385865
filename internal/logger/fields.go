package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the service provider name.
	FieldProvider = "provider"
	// FieldEndpoint is the structured log field key for the backend base url or AI model.
	FieldEndpoint = "endpoint"
	// FieldSession is the structured log field key for the workflow session id.
	FieldSession = "session_id"
	// FieldKind is the structured log field key for the selected generator.
	FieldKind = "generator"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced by a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns the fields describing which service clients are in use.
// Empty values are ignored to keep log entries compact.
func CommonFields(provider, endpoint string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldEndpoint, Value: endpoint},
	)
}

// WithCommonFields attaches the provider fields to the provided logger.
func WithCommonFields(logger *zap.Logger, provider, endpoint string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, endpoint)...)
}

// SessionFields returns the fields identifying a workflow session.
func SessionFields(sessionID, kind string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSession, Value: sessionID},
		StringField{Key: FieldKind, Value: kind},
	)
}
