package validators

import (
	"context"
	"unicode"

	"github.com/MKhiriev/go-rest-common/models"
)

// Field names accepted by [CredentialsValidator.Validate].
const (
	FieldUsername = "username"
	FieldPassword = "password"
	FieldKey      = "key"
)

// MaxUsernameLength bounds the username column.
const MaxUsernameLength = 150

const tokenKeyLength = 40

type CredentialsValidator struct{}

func NewCredentialsValidator() Validator {
	return &CredentialsValidator{}
}

// Validate checks a models.User or a models.AuthToken. Without fields the
// username and password of a user, or the key of a token, are checked.
func (v *CredentialsValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.User:
		return v.validateUser(value, fields...)
	case *models.User:
		return v.validateUser(*value, fields...)

	case models.AuthToken:
		return v.validateToken(value, fields...)
	case *models.AuthToken:
		return v.validateToken(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *CredentialsValidator) validateUser(user models.User, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUsername, FieldPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldUsername:
			if err := validateUsername(user.Username); err != nil {
				return err
			}
		case FieldPassword:
			if user.Password == "" {
				return ErrEmptyPassword
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *CredentialsValidator) validateToken(token models.AuthToken, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldKey}
	}

	for _, f := range fields {
		switch f {
		case FieldKey:
			if len(token.Key) != tokenKeyLength || !isHex(token.Key) {
				return ErrInvalidKey
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	if len([]rune(username)) > MaxUsernameLength {
		return ErrLongUsername
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '@', '.', '+', '-', '_':
		default:
			return ErrInvalidUsername
		}
	}
	return nil
}

func isHex(s string) bool {
	for _, r := range s {
		if !('0' <= r && r <= '9' || 'a' <= r && r <= 'f') {
			return false
		}
	}
	return true
}
