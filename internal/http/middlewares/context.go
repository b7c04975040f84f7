package middlewares

import "context"

type ctxKey string

const (
	// ctxActorIDKey guarda el actor ID extraído del token
	ctxActorIDKey ctxKey = "actor_id"
	// ctxActorEmailKey guarda el email del actor (claim opcional)
	ctxActorEmailKey ctxKey = "actor_email"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// WithActorID inyecta el actor ID en el contexto
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ctxActorIDKey, actorID)
}

// WithActorEmail inyecta el email del actor en el contexto
func WithActorEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ctxActorEmailKey, email)
}

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetActorID obtiene el actor ID del contexto.
// Retorna cadena vacía si no hay actor autenticado.
func GetActorID(ctx context.Context) string {
	if v := ctx.Value(ctxActorIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetActorEmail obtiene el email del actor del contexto.
func GetActorEmail(ctx context.Context) string {
	if v := ctx.Value(ctxActorEmailKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
