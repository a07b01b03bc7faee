package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ElectroMart/pkg/kit"
)

const (
	maxBodyBytes = 1 << 20
	tokenTTL     = 15 * time.Minute
	minPassword  = 8
)

type Server struct {
	Log   *zap.Logger
	Store *MemStore
	JWT   *TokenMaker
}

// Routes are mounted under /auth by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Get("/whoami", s.handleWhoAmI)

	return r
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Password = strings.TrimSpace(req.Password)

	if req.Email == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "email/password required", nil)
		return
	}
	if len(req.Password) < minPassword {
		kit.WriteError(w, r, http.StatusBadRequest, "password too short", map[string]any{"min_len": minPassword})
		return
	}

	id := "u_" + uuid.NewString()

	if err := s.Store.Create(req.Email, req.Password, RoleUser, id); err != nil {
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

type loginResp struct {
	AccessToken string `json:"access_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	if req.Email == "" || req.Password == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "email/password required", nil)
		return
	}

	u, err := s.Store.Verify(req.Email, req.Password)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	tok, err := s.JWT.New(u.ID, u.Email, u.Role, tokenTTL)
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, loginResp{AccessToken: tok})
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	claims, ok := bearerClaims(s.JWT, r)
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id": claims.UserID,
		"email":   claims.Email,
		"role":    claims.Role,
	})
}

func bearerClaims(jwt *TokenMaker, r *http.Request) (Claims, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return Claims{}, false
	}

	claims, err := jwt.Parse(strings.TrimPrefix(authz, "Bearer "))
	if err != nil || claims.UserID == "" {
		return Claims{}, false
	}
	return claims, true
}
