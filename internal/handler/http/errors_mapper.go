package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-rest-common/internal/service"
	"github.com/MKhiriev/go-rest-common/internal/store"
)

var errorStatusMap = map[error]int{
	ErrInvalidPayload: http.StatusBadRequest,

	service.ErrInvalidDataProvided:   http.StatusBadRequest,
	service.ErrInvalidCredentials:    http.StatusBadRequest,
	service.ErrUserInactive:          http.StatusBadRequest,
	service.ErrInvalidToken:          http.StatusUnauthorized,
	service.ErrVersionIsNotSpecified: http.StatusBadRequest,

	store.ErrUsernameAlreadyExists: http.StatusConflict,
	store.ErrNoUserWasFound:        http.StatusNotFound,
	store.ErrTokenNotFound:         http.StatusNotFound,
	store.ErrTokenAlreadyExists:    http.StatusConflict,

	store.ErrBuildingSQLQuery: http.StatusInternalServerError,
	store.ErrExecutingQuery:   http.StatusInternalServerError,
	store.ErrScanningRow:      http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// detailFromError hides internal failures behind the status text.
func detailFromError(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	if errors.Is(err, service.ErrInvalidDataProvided) {
		return err.Error()
	}
	for target := range errorStatusMap {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
