package shared

import (
	"context"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
)

type contextKey int

const (
	principalKey contextKey = iota
	traceIDKey
)

// TraceIDLength is the number of bytes behind a trace ID; the header and
// error bodies carry it hex-encoded.
const TraceIDLength = len(uuid.UUID{})

// SetTraceID returns a copy of ctx carrying a fresh trace ID, a random UUID
// without dashes.
func SetTraceID(ctx context.Context) context.Context {
	id := uuid.New()
	return context.WithValue(ctx, traceIDKey, hex.EncodeToString(id[:]))
}

// GetTraceID returns the trace ID of ctx, or "" outside a traced request.
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom reports the signed-in caller. A principal with an unknown
// role is treated as absent.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok && p.Role.IsValid()
}
