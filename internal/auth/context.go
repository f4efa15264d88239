package auth

import "context"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type UserContext struct {
	UserID  string
	Role    string
	StoreID string
}

func (u UserContext) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Scope is the store a user works in. Users without a store are scoped to themselves.
func (u UserContext) Scope() string {
	if u.StoreID != "" {
		return u.StoreID
	}
	return u.UserID
}

type ctxKey struct{}

func WithUser(ctx context.Context, u UserContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// GetUser returns the identity placed on ctx by the auth middleware.
func GetUser(ctx context.Context) (UserContext, bool) {
	u, ok := ctx.Value(ctxKey{}).(UserContext)
	return u, ok && u.UserID != ""
}
