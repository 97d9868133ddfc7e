package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-account-api/accountmanager"
	"github.com/jrsteele09/go-account-api/attributes"
	"github.com/jrsteele09/go-account-api/authrequests"
	"github.com/jrsteele09/go-account-api/internal/config"
	"github.com/jrsteele09/go-account-api/oidcclient"
	"github.com/jrsteele09/go-account-api/users"
	"github.com/rs/zerolog/log"
)

// TokenClient is the part of the identity provider client the handlers use
type TokenClient interface {
	AuthCodeURL(state, nonce string) string
	ExchangeCode(ctx context.Context, code, nonce string) (*oidcclient.Tokens, error)
}

// ReadinessCheck reports whether the backing stores are reachable
type ReadinessCheck func(ctx context.Context) error

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	AuthRequests   *authrequests.Store
	Users          users.Repo
	Tokens         TokenClient
	Attributes     *attributes.Client
	AccountManager *accountmanager.Client
	Ready          ReadinessCheck
}

type Server struct {
	env            string // Environment (e.g., "DEV", "PROD")
	router         chi.Router
	routes         []string
	config         config.Config
	authRequests   *authrequests.Store
	users          users.Repo
	tokens         TokenClient
	attributes     *attributes.Client
	accountManager *accountmanager.Client
	ready          ReadinessCheck
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.AuthRequests == nil || deps.Users == nil || deps.Tokens == nil || deps.Attributes == nil || deps.AccountManager == nil {
		return nil, fmt.Errorf("[Server New] missing dependencies")
	}

	s := &Server{
		env:            config.GetEnv(),
		router:         chi.NewRouter(),
		config:         config,
		authRequests:   deps.AuthRequests,
		users:          deps.Users,
		tokens:         deps.Tokens,
		attributes:     deps.Attributes,
		accountManager: deps.AccountManager,
		ready:          deps.Ready,
	}
	if s.ready == nil {
		s.ready = func(context.Context) error { return nil }
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	displayMethod := Gray + paddedMethod + ResetColor
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to write response body")
	}
}

// decodeJSONBody reads a JSON request body no larger than the configured limit
func (s *Server) decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.GetMaxRequestBodyBytes())
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
