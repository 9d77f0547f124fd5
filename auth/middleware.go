package auth

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-rest-common/internal/logger"
	"github.com/MKhiriev/go-rest-common/internal/utils"
)

// Middleware runs authenticators in order. The first user found is attached
// to the request context. An [*AuthenticationFailed] stops the chain with
// 401; any other error with 500. When no authenticator recognises the
// request it continues anonymously.
func Middleware(authenticators ...Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, a := range authenticators {
				user, err := a.Authenticate(r)
				if err != nil {
					writeError(w, r, a, err)
					return
				}
				if user != nil {
					r = r.WithContext(WithUser(r.Context(), user))
					break
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects requests without an authenticated user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", keyword)
			utils.WriteDetail(w, ErrNotAuthenticated.Detail, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, r *http.Request, a Authenticator, err error) {
	log := logger.FromRequest(r)

	var failed *AuthenticationFailed
	if !errors.As(err, &failed) {
		log.Err(err).Msg("authentication error")
		utils.WriteDetail(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	log.Debug().Err(err).Msg("authentication failed")
	if c, ok := a.(Challenger); ok {
		w.Header().Set("WWW-Authenticate", c.AuthenticateHeader(r))
	}
	utils.WriteDetail(w, failed.Detail, http.StatusUnauthorized)
}
