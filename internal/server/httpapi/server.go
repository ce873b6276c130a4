// Package httpapi exposes the authentication service over HTTP: account
// registration, cookie-based login, token revocation and API key management.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/saasbackend/authcore/internal/logging"
	"github.com/saasbackend/authcore/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address string
	logger  logging.Logger
	users   *services.UserService
	tokens  *services.TokenService
	apikeys *services.APIKeyService
}

func NewServer(a string, l logging.Logger, us *services.UserService, ts *services.TokenService, ks *services.APIKeyService) (*Server, error) {
	return &Server{
		address: a,
		logger:  l.With("module", "http_server"),
		users:   us,
		tokens:  ts,
		apikeys: ks,
	}, nil
}

// Handler builds the route table. Split out from Run so tests can drive the
// mux through httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", s.registerUser)
	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("POST /logout", s.logout)

	mux.HandleFunc("PUT /api-key", s.authorized(s.createAPIKey))
	mux.HandleFunc("GET /api-key", s.authorized(s.getAPIKey))
	mux.HandleFunc("DELETE /api-key", s.authorized(s.deleteAPIKey))

	mux.HandleFunc("GET /ping", s.ping)

	return mux
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
