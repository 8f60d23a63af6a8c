// Package log encapsula o logrus com o ID de correlação de cada requisição
package log

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Fields logrus.Fields

// Logger expõe apenas o que os handlers e serviços usam
type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields Fields) Logger
	WithError(err error) Logger

	Info(args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
}

type correlationIDKey struct{}

const correlationIDField = "correlation_id"

type logger struct {
	entry       *logrus.Entry
	development bool
}

// L usa o logger padrão do logrus, configurado em main
var L Logger = newLogger(logrus.StandardLogger(), IsDevelopment())

func newLogger(base *logrus.Logger, development bool) *logger {
	return &logger{entry: logrus.NewEntry(base), development: development}
}

func IsDevelopment() bool {
	switch os.Getenv("APP_ENV") {
	case "", "development", "dev":
		return true
	}
	return false
}

// Em desenvolvimento só estes campos aparecem; o restante polui o terminal
var developmentFields = map[string]bool{
	correlationIDField: true,
	"method":           true,
	"path":             true,
	"status_code":      true,
	"duration_ms":      true,
	"error":            true,
	"connection_id":    true,
	"event":            true,
	"field":            true,
	"client_ip":        true,
	"job":              true,
}

func (l *logger) keep(key string) bool {
	return !l.development || developmentFields[key] || strings.HasPrefix(key, "state_")
}

func (l *logger) with(entry *logrus.Entry) *logger {
	return &logger{entry: entry, development: l.development}
}

func (l *logger) WithField(key string, value any) Logger {
	if !l.keep(key) {
		return l
	}
	return l.with(l.entry.WithField(key, value))
}

func (l *logger) WithFields(fields Fields) Logger {
	kept := make(logrus.Fields, len(fields))
	for k, v := range fields {
		if l.keep(k) {
			kept[k] = v
		}
	}
	if len(kept) == 0 {
		return l
	}
	return l.with(l.entry.WithFields(kept))
}

func (l *logger) WithError(err error) Logger {
	return l.with(l.entry.WithError(err))
}

func (l *logger) Info(args ...any)                 { l.entry.Info(args...) }
func (l *logger) Warn(args ...any)                 { l.entry.Warn(args...) }
func (l *logger) Warnf(format string, args ...any) { l.entry.Warnf(format, args...) }
func (l *logger) Error(args ...any)                { l.entry.Error(args...) }

// WithExistingCorrelationID reaproveita o ID recebido (ex.: X-Request-ID) ou gera um novo
func WithExistingCorrelationID(ctx context.Context, correlationID string) (context.Context, string) {
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	return context.WithValue(ctx, correlationIDKey{}, correlationID), correlationID
}

func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	correlationID, _ := ctx.Value(correlationIDKey{}).(string)
	return correlationID
}

// ForContext retorna L com o ID de correlação da requisição, quando houver
func ForContext(ctx context.Context) Logger {
	if correlationID := GetCorrelationID(ctx); correlationID != "" {
		return L.WithField(correlationIDField, correlationID)
	}
	return L
}
