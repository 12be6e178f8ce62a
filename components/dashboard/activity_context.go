package dashboard

import "context"

// ActivityContext identifies who triggered a change. It is attached to
// telemetry payloads so audit sinks can attribute events.
type ActivityContext struct {
	ActorID   string `json:"actor_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type activityContextKey struct{}

// ContextWithActivity stores activity context on the provided context.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

// ActivityFromContext extracts the activity context, if present.
func ActivityFromContext(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	if meta, ok := ctx.Value(activityContextKey{}).(ActivityContext); ok {
		return meta
	}
	return ActivityContext{}
}

func withActivity(ctx context.Context, payload map[string]any) map[string]any {
	meta := ActivityFromContext(ctx)
	if meta.ActorID == "" && meta.SessionID == "" {
		return payload
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if meta.ActorID != "" {
		payload["actor_id"] = meta.ActorID
	}
	if meta.SessionID != "" {
		payload["session_id"] = meta.SessionID
	}
	return payload
}
