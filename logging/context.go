package logging

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKeyLog struct{}

// WithLogger returns a copy of ctx carrying log.
func WithLogger(ctx context.Context, log logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKeyLog{}, log)
}

// FromContext returns the request-scoped logger, or the logrus standard
// logger when ctx carries none.
func FromContext(ctx context.Context) logrus.FieldLogger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKeyLog{}).(logrus.FieldLogger); ok && log != nil {
			return log
		}
	}
	return logrus.StandardLogger()
}
