package auth

import (
	"context"

	"github.com/MKhiriev/go-rest-common/models"
)

type userCtxKey struct{}

type slotCtxKey struct{}

// userSlot lets middleware that runs before authentication see the user
// attached further down the chain once the handler returns.
type userSlot struct {
	user *models.User
}

// WithUser returns a child context carrying user. A slot installed by
// [WithUserSlot] is filled as well.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if slot, ok := ctx.Value(slotCtxKey{}).(*userSlot); ok {
		slot.user = user
	}
	return context.WithValue(ctx, userCtxKey{}, user)
}

// WithUserSlot returns a child context with an empty user slot.
func WithUserSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, slotCtxKey{}, &userSlot{})
}

// UserFromContext returns the authenticated user attached to ctx, looking at
// the slot when ctx predates authentication.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	if u, ok := ctx.Value(userCtxKey{}).(*models.User); ok && u != nil {
		return u, true
	}
	if slot, ok := ctx.Value(slotCtxKey{}).(*userSlot); ok && slot.user != nil {
		return slot.user, true
	}
	return nil, false
}
