package service

import (
	"context"

	"github.com/MKhiriev/go-rest-common/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mock_service.go -package=mock

// AuthService manages accounts and their tokens. It also acts as the
// credential resolver of the token authentication scheme.
type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	// ObtainToken returns the user's token, creating it on first use.
	ObtainToken(ctx context.Context, username, password string) (models.AuthToken, error)
	RevokeToken(ctx context.Context, key string) error
	AuthenticateCredentials(ctx context.Context, key string) (models.User, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
