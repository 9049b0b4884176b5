package userctx

import "context"

// Context key type
type contextKey string

const userIDKey contextKey = "user_id"
const orgIDKey contextKey = "org_id"

// SetUserID adds the acting user ID to request context
func SetUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// GetUserID retrieves the acting user ID from request context
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return "anonymous"
}

// SetOrgID adds the acting org ID to request context
func SetOrgID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, orgIDKey, id)
}

// GetOrgID retrieves the acting org ID from request context
func GetOrgID(ctx context.Context) string {
	if id, ok := ctx.Value(orgIDKey).(string); ok {
		return id
	}
	return ""
}
