package httpx

import "context"

type ctxKey string

const (
	ctxKeySubject ctxKey = "subject"
)

// WithSubject records who the request is acting as once an authorization
// check has identified them. Rate limiting keys off it.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxKeySubject, subject)
}

// SubjectFromContext returns the subject stored by WithSubject, if any.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySubject).(string); ok {
		return v
	}
	return ""
}
