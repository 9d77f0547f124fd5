package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyUsername   = errors.New("username is required")
	ErrLongUsername    = errors.New("username is too long")
	ErrInvalidUsername = errors.New("username may contain only letters, digits and @/./+/-/_")
	ErrEmptyPassword   = errors.New("password is required")
	ErrInvalidKey      = errors.New("invalid token key")
)
