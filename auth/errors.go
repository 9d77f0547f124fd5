package auth

import "errors"

// AuthenticationFailed is returned by an [Authenticator] that recognised its
// scheme but rejected the credentials. Detail is shown to the client as is.
type AuthenticationFailed struct {
	Detail string
	Err    error
}

// Failed returns an [*AuthenticationFailed] with detail.
func Failed(detail string) *AuthenticationFailed {
	return &AuthenticationFailed{Detail: detail}
}

func (e *AuthenticationFailed) Error() string {
	return e.Detail
}

func (e *AuthenticationFailed) Unwrap() error {
	return e.Err
}

// Is matches any *AuthenticationFailed with the same Detail.
func (e *AuthenticationFailed) Is(target error) bool {
	var t *AuthenticationFailed
	if !errors.As(target, &t) {
		return false
	}
	return t.Detail == e.Detail
}

// Header shape errors.
var (
	ErrNoCredentialsProvided = Failed("Invalid token header. No credentials provided.")
	ErrTokenContainsSpaces   = Failed("Invalid token header. Token string should not contain spaces.")
	ErrNotAuthenticated      = Failed("Authentication credentials were not provided.")
)
