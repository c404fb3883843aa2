package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"absensi/internal/model"
	"absensi/internal/service"
	"absensi/internal/session"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type sessionResponse struct {
	Token   string             `json:"token,omitempty"`
	UID     string             `json:"uid"`
	Email   string             `json:"email"`
	Profile *model.UserProfile `json:"profile"`
	View    string             `json:"view"`
}

func newSessionResponse(sess *session.Session, requestedView string) sessionResponse {
	return sessionResponse{
		UID:     sess.Identity.UID,
		Email:   sess.Identity.Email,
		Profile: sess.Profile,
		View:    sess.View(requestedView),
	}
}

// HandleSignUp creates an account with its profile and returns a session token.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	sess, err := h.svc.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := newSessionResponse(sess, "")
	resp.Token = sess.Token
	writeJSONStatus(w, http.StatusCreated, resp)
}

func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req service.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	sess, err := h.svc.SignIn(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := newSessionResponse(sess, "")
	resp.Token = sess.Token
	writeJSON(w, resp)
}

func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := h.svc.SignOut(r.Context(), sess.Token); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession describes the caller's session. ?view=admin asks for the
// admin view, which only admins get.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	writeJSON(w, newSessionResponse(sess, r.URL.Query().Get("view")))
}

// RegisterRoutes registers the auth API routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signup", h.HandleSignUp)
	mux.HandleFunc("POST /api/auth/signin", h.HandleSignIn)
	mux.HandleFunc("POST /api/auth/signout", RequireSession(h.HandleSignOut))
	mux.HandleFunc("GET /api/session", RequireSession(h.HandleSession))
}
