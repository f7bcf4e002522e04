package bootstrap

import "context"

// AuditLog adalah satu entri audit yang dikirim ke sink eksternal.
type AuditLog struct {
	Action  string
	Actor   string
	Entity  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
