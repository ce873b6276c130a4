package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saasbackend/authcore/internal/common"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
	APIKey  string `json:"api_key,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body messageResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a service error to an HTTP status. Unauthenticated
// outcomes share one generic body; an expired token additionally carries a
// machine-readable marker header. Store faults are logged, never echoed.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		w.Header().Set("Expired", "true")
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Could not validate credentials"})
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenRevoked),
		errors.Is(err, common.ErrUserNotFound):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Could not validate credentials"})
	case errors.Is(err, common.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid username or password"})
	case errors.Is(err, common.ErrAPIKeyNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "API key not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Username already registered"})
	default:
		args := []any{"op", op}
		if user := userFromContext(ctx); user != nil {
			args = append(args, "user_id", user.ID)
		}
		s.logger.Error(ctx, err.Error(), args...)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
	}
}

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}

	s.logger.Info(r.Context(), "Registration request", "username", req.Username)

	if _, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		s.writeError(r.Context(), w, err, "register")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "User registered successfully"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(r.Context(), w, err, "login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info(r.Context(), "Logged in", "username", user.Username)
	writeJSON(w, http.StatusOK, messageResponse{Message: "User logged in successfully"})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {

	bearer := bearerFromRequest(r)
	if bearer == "" {
		s.writeError(r.Context(), w, common.ErrInvalidToken, "logout")
		return
	}

	if err := s.tokens.Logout(r.Context(), bearer); err != nil {
		s.writeError(r.Context(), w, err, "logout")
		return
	}

	// Expire the login cookie alongside the server-side revocation.
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, messageResponse{Message: "User logged out successfully"})
}

func (s *Server) createAPIKey(w http.ResponseWriter, r *http.Request) {

	user := userFromContext(r.Context())

	key, err := s.apikeys.Create(r.Context(), user)
	if err != nil {
		s.writeError(r.Context(), w, err, "create api key")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "API key created successfully", APIKey: key})
}

func (s *Server) getAPIKey(w http.ResponseWriter, r *http.Request) {

	user := userFromContext(r.Context())

	key, err := s.apikeys.Get(r.Context(), user)
	if err != nil {
		s.writeError(r.Context(), w, err, "get api key")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "API key retrieved successfully", APIKey: key})
}

func (s *Server) deleteAPIKey(w http.ResponseWriter, r *http.Request) {

	user := userFromContext(r.Context())

	if err := s.apikeys.Delete(r.Context(), user); err != nil {
		s.writeError(r.Context(), w, err, "delete api key")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "API key deleted successfully"})
}

func (s *Server) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
