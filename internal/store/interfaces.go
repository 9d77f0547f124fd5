package store

import (
	"context"

	"github.com/MKhiriev/go-rest-common/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mock_store.go -package=mock

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
}

// TokenRepository is the token store: it maps opaque keys to their owners.
type TokenRepository interface {
	// FindUserByToken returns the owner of key or [ErrTokenNotFound].
	FindUserByToken(ctx context.Context, key string) (models.User, error)
	// FindTokenByUserID returns the user's token or [ErrTokenNotFound].
	FindTokenByUserID(ctx context.Context, userID int64) (models.AuthToken, error)
	CreateToken(ctx context.Context, token models.AuthToken) (models.AuthToken, error)
	DeleteToken(ctx context.Context, key string) error
}
