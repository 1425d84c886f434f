package rest

import (
	"net/http"

	"github.com/aliskhannn/boulder-progress/internal/service"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpInput
	if err := decodeJSON(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	profile, err := h.auth.SignUp(r.Context(), req)
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, apiResponse{Success: true, Data: profile})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	success(w, map[string]any{
		"token":      session.Token,
		"user_id":    session.UserID,
		"expires_at": session.ExpiresAt,
	})
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), tokenFrom(r.Context())); err != nil {
		h.failWith(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "signed out"})
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	success(w, profileFrom(r.Context()))
}

func (h *Handler) UserCount(w http.ResponseWriter, r *http.Request) {
	count, limit, err := h.auth.UserCount(r.Context())
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	success(w, map[string]int64{"count": count, "limit": limit})
}
