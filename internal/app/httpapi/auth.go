package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bod9dzys/order-api-mvp/internal/app/services/users"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
	"github.com/bod9dzys/order-api-mvp/internal/httputil"
)

type credentialsPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// email returns whichever identity field the client filled in.
func (p credentialsPayload) email() string {
	if p.Email != "" {
		return p.Email
	}
	return p.Username
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}

	u, err := h.app.Users.Register(r.Context(), payload.email(), payload.Password)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			httputil.BadRequest(w, "Email exists")
			return
		}
		respondError(w, r, err, errorMessages{})
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, u)
}

// login accepts either a JSON body or an OAuth2-style form with username and
// password fields.
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			httputil.BadRequest(w, "invalid form body")
			return
		}
		payload.Username = r.PostFormValue("username")
		payload.Password = r.PostFormValue("password")
	} else if !httputil.DecodeJSON(w, r, &payload) {
		return
	}

	u, err := h.app.Users.Authenticate(r.Context(), payload.email(), payload.Password)
	if err != nil {
		if errors.Is(err, users.ErrBadCredentials) {
			httputil.Unauthorized(w, "Bad credentials")
			return
		}
		respondError(w, r, err, errorMessages{})
		return
	}

	pair, err := h.tokens.IssuePair(u.ID, u.Email, string(u.Role))
	if err != nil {
		httputil.InternalError(w, "could not issue tokens")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pair)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}

	claims, err := h.tokens.VerifyRefresh(payload.RefreshToken)
	if err != nil {
		httputil.Unauthorized(w, "Invalid token")
		return
	}

	// Re-resolve the user so revoked accounts cannot refresh forever.
	u, err := h.app.Users.Get(r.Context(), claims.UserID)
	if err != nil {
		httputil.Unauthorized(w, "Invalid token")
		return
	}

	pair, err := h.tokens.IssuePair(u.ID, u.Email, string(u.Role))
	if err != nil {
		httputil.InternalError(w, "could not issue tokens")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pair)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	u, err := h.app.Users.Get(r.Context(), userID)
	if err != nil {
		httputil.Unauthorized(w, "Could not validate credentials")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, u)
}
