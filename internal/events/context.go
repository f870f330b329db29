package events

import "context"

// The session ID travels through the context so any component working on
// behalf of a conversation can stamp the events it publishes without the ID
// threading through every call signature.

type sessionKey struct{}

// ContextWithSessionID attaches a conversation's session ID to the context.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionIDFromContext returns the session ID carried by the context, or ""
// for events not tied to a conversation.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
