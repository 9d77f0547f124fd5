package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-rest-common/auth"
	"github.com/MKhiriev/go-rest-common/internal/logger"
	"github.com/MKhiriev/go-rest-common/internal/store"
	"github.com/MKhiriev/go-rest-common/internal/utils"
	"github.com/MKhiriev/go-rest-common/internal/validators"
	"github.com/MKhiriev/go-rest-common/models"
)

// authService is the concrete implementation of AuthService.
// Passwords are stored as bcrypt hashes; tokens are random 40-character keys,
// one per user.
type authService struct {
	userRepository  store.UserRepository
	tokenRepository store.TokenRepository

	validator validators.Validator

	// generateKey produces new token keys.
	generateKey func() (string, error)

	logger *logger.Logger
}

// NewAuthService constructs a new AuthService over the given repositories.
func NewAuthService(users store.UserRepository, tokens store.TokenRepository, logger *logger.Logger) AuthService {
	return &authService{
		userRepository:  users,
		tokenRepository: tokens,
		validator:       validators.NewCredentialsValidator(),
		generateKey:     utils.GenerateTokenKey,
		logger:          logger,
	}
}

// RegisterUser creates an active account for user.Username with the bcrypt
// hash of user.Password.
//
// Returns ErrInvalidDataProvided if the credentials fail validation, or a
// wrapped storage error (see store.ErrUsernameAlreadyExists).
func (a *authService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, user); err != nil {
		log.Error().Err(err).Str("username", user.Username).Msg("invalid user data provided")
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	hash, err := utils.HashPassword(user.Password)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = hash
	user.Password = ""
	user.IsActive = true

	registeredUser, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("username", user.Username).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return registeredUser, nil
}

// ObtainToken checks the credentials and returns the user's token. A token
// is created on first use; a concurrent creation for the same user is
// resolved by reading the winner's token.
func (a *authService) ObtainToken(ctx context.Context, username, password string) (models.AuthToken, error) {
	log := logger.FromContext(ctx)

	if username == "" || password == "" {
		return models.AuthToken{}, ErrInvalidDataProvided
	}

	user, err := a.userRepository.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.AuthToken{}, ErrInvalidCredentials
		}
		log.Err(err).Str("username", username).Msg("user search by username failed")
		return models.AuthToken{}, fmt.Errorf("user search by username failed: %w", err)
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		log.Debug().Int64("id", user.UserID).Msg("wrong password")
		return models.AuthToken{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return models.AuthToken{}, ErrUserInactive
	}

	token, err := a.tokenRepository.FindTokenByUserID(ctx, user.UserID)
	switch {
	case err == nil:
		return token, nil
	case !errors.Is(err, store.ErrTokenNotFound):
		return models.AuthToken{}, fmt.Errorf("token search failed: %w", err)
	}

	key, err := a.generateKey()
	if err != nil {
		return models.AuthToken{}, err
	}

	token, err = a.tokenRepository.CreateToken(ctx, models.AuthToken{Key: key, UserID: user.UserID})
	if errors.Is(err, store.ErrTokenAlreadyExists) {
		log.Debug().Int64("id", user.UserID).Msg("token was created concurrently")
		token, err = a.tokenRepository.FindTokenByUserID(ctx, user.UserID)
	}
	if err != nil {
		return models.AuthToken{}, fmt.Errorf("token creation failed: %w", err)
	}

	return token, nil
}

func (a *authService) RevokeToken(ctx context.Context, key string) error {
	if err := a.tokenRepository.DeleteToken(ctx, key); err != nil {
		return fmt.Errorf("token deletion failed: %w", err)
	}
	return nil
}

// AuthenticateCredentials resolves key to an active user. Unknown keys and
// inactive users yield an *auth.AuthenticationFailed.
func (a *authService) AuthenticateCredentials(ctx context.Context, key string) (models.User, error) {
	user, err := a.tokenRepository.FindUserByToken(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return models.User{}, &auth.AuthenticationFailed{Detail: ErrInvalidToken.Error(), Err: ErrInvalidToken}
		}
		return models.User{}, fmt.Errorf("token lookup failed: %w", err)
	}

	if !user.IsActive {
		return models.User{}, &auth.AuthenticationFailed{Detail: ErrUserInactive.Error(), Err: ErrUserInactive}
	}

	return user, nil
}
