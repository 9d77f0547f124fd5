package http

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/MKhiriev/go-rest-common/auth"
	"github.com/MKhiriev/go-rest-common/internal/logger"
	"github.com/MKhiriev/go-rest-common/internal/utils"
	"github.com/MKhiriev/go-rest-common/models"
)

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user, err := decodeCredentials(r)
	if err != nil {
		log.Err(err).Msg("invalid payload was passed")
		h.writeError(w, r, err)
		return
	}

	registeredUser, err := h.services.AuthService.RegisterUser(ctx, user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	log.Debug().Int64("id", registeredUser.UserID).Msg("user registered")
	utils.WriteJSON(w, registeredUser, http.StatusCreated)
}

func (h *Handler) obtainToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user, err := decodeCredentials(r)
	if err != nil {
		log.Err(err).Msg("invalid payload was passed")
		h.writeError(w, r, err)
		return
	}

	token, err := h.services.AuthService.ObtainToken(ctx, user.Username, user.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, tokenResponse{Token: token.Key}, http.StatusOK)
}

func (h *Handler) revokeToken(w http.ResponseWriter, r *http.Request) {
	key, ok := h.tokenAuth.Key(r)
	if !ok {
		utils.WriteDetail(w, auth.ErrNotAuthenticated.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.services.AuthService.RevokeToken(r.Context(), key); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	utils.WriteJSON(w, user, http.StatusOK)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		logger.FromRequest(r).Err(err).Msg("request failed")
	}
	utils.WriteDetail(w, detailFromError(err, status), status)
}

// decodeCredentials reads username and password from a JSON body or from
// form values.
func decodeCredentials(r *http.Request) (models.User, error) {
	var user models.User

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
			return models.User{}, ErrInvalidPayload
		}
		return user, nil
	}

	if err := r.ParseForm(); err != nil {
		return models.User{}, ErrInvalidPayload
	}
	user.Username = r.PostFormValue("username")
	user.Password = r.PostFormValue("password")
	return user, nil
}
