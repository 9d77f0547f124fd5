// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package auth

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-rest-common/models"
)

// DefaultHeaderName is the header consulted when none is configured.
const DefaultHeaderName = "HTTP_API_AUTHORIZATION"

const keyword = "Token"

//go:generate mockgen -source=token.go -destination=../internal/mock/mock_auth.go -package=mock

// CredentialResolver exchanges a token key for its owner. It returns an
// [*AuthenticationFailed] for unknown keys or inactive users.
type CredentialResolver interface {
	AuthenticateCredentials(ctx context.Context, key string) (models.User, error)
}

// Authenticator inspects a request. A nil user with a nil error means the
// request does not use this scheme and other authenticators may be tried.
type Authenticator interface {
	Authenticate(r *http.Request) (*models.User, error)
}

// Challenger reports the WWW-Authenticate value sent with a 401.
type Challenger interface {
	AuthenticateHeader(r *http.Request) string
}

// TokenAuthentication reads "Token <key>" from a custom header and hands the
// key to a [CredentialResolver].
type TokenAuthentication struct {
	headerName    string
	allowFallback bool
	resolver      CredentialResolver
}

// Option configures a [TokenAuthentication].
type Option func(*TokenAuthentication)

// WithHeaderName sets the header carrying the token. CGI style names such as
// HTTP_API_AUTHORIZATION are accepted.
func WithHeaderName(name string) Option {
	return func(t *TokenAuthentication) {
		if name != "" {
			t.headerName = HeaderName(name)
		}
	}
}

// WithFallback allows the standard Authorization header to be used when the
// custom header is absent. Enable it in development and staging only.
func WithFallback(allow bool) Option {
	return func(t *TokenAuthentication) {
		t.allowFallback = allow
	}
}

// NewTokenAuthentication builds a TokenAuthentication resolving keys with
// resolver.
func NewTokenAuthentication(resolver CredentialResolver, opts ...Option) *TokenAuthentication {
	t := &TokenAuthentication{
		headerName: HeaderName(DefaultHeaderName),
		resolver:   resolver,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// HeaderName maps a CGI style name (HTTP_API_AUTHORIZATION) to its wire form
// (Api-Authorization). Other names are only canonicalized.
func HeaderName(name string) string {
	name = strings.TrimSpace(name)
	if upper := strings.ToUpper(name); strings.HasPrefix(upper, "HTTP_") {
		name = strings.ReplaceAll(name[len("HTTP_"):], "_", "-")
	}
	return http.CanonicalHeaderKey(name)
}

// Header returns the wire name of the header the token is read from.
func (t *TokenAuthentication) Header() string {
	return t.headerName
}

// AuthorizationHeader returns the raw value of the token header, or of the
// Authorization header when fallback is enabled and the former is absent.
func (t *TokenAuthentication) AuthorizationHeader(r *http.Request) []byte {
	auth := r.Header.Get(t.headerName)
	if auth == "" && t.allowFallback {
		auth = r.Header.Get("Authorization")
	}
	return []byte(auth)
}

// Authenticate implements [Authenticator].
func (t *TokenAuthentication) Authenticate(r *http.Request) (*models.User, error) {
	parts := bytes.Fields(t.AuthorizationHeader(r))

	if len(parts) == 0 || !bytes.EqualFold(parts[0], []byte(keyword)) {
		return nil, nil
	}

	switch {
	case len(parts) == 1:
		return nil, ErrNoCredentialsProvided
	case len(parts) > 2:
		return nil, ErrTokenContainsSpaces
	}

	return t.authenticateCredentials(r.Context(), string(parts[1]))
}

// Key returns the credential of a well-formed "Token <key>" header.
func (t *TokenAuthentication) Key(r *http.Request) (string, bool) {
	parts := bytes.Fields(t.AuthorizationHeader(r))
	if len(parts) != 2 || !bytes.EqualFold(parts[0], []byte(keyword)) {
		return "", false
	}
	return string(parts[1]), true
}

func (t *TokenAuthentication) authenticateCredentials(ctx context.Context, key string) (*models.User, error) {
	user, err := t.resolver.AuthenticateCredentials(ctx, key)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AuthenticateHeader implements [Challenger].
func (t *TokenAuthentication) AuthenticateHeader(*http.Request) string {
	return keyword
}
