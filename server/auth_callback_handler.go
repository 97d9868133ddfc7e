package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/jrsteele09/go-account-api/sessions"
	"github.com/jrsteele09/go-account-api/users"
	"github.com/rs/zerolog/log"
)

type signInResponse struct {
	AuthURI string `json:"auth_uri"`
	State   string `json:"state"`
}

// SignInHandler starts the handshake: it stores a fresh state and nonce and
// returns the provider URL the user should be sent to.
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authRequest, err := s.authRequests.Begin(r.Context(), r.URL.Query().Get("redirect_path"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, signInResponse{
			AuthURI: s.tokens.AuthCodeURL(authRequest.OAuthState, authRequest.OIDCNonce),
			State:   authRequest.OAuthState,
		})
	}
}

type callbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

type callbackResponse struct {
	Session        string                     `json:"govuk_account_session"`
	RedirectPath   string                     `json:"redirect_path,omitempty"`
	EphemeralState map[string]json.RawMessage `json:"ephemeral_state"`
}

// CallbackHandler completes the handshake. The auth request is consumed before
// the code is exchanged, so a replayed state is refused even if the code is
// still valid.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req callbackRequest
		if err := s.decodeJSONBody(w, r, &req); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		if req.Code == "" || req.State == "" {
			writeBadRequest(w, "code and state are required")
			return
		}

		authRequest, err := s.authRequests.Consume(r.Context(), req.State)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			log.Info().Err(err).Msg("callback with unknown oauth state")
			writeUnauthorized(w)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		tokens, err := s.tokens.ExchangeCode(r.Context(), req.Code, authRequest.OIDCNonce)
		if err != nil {
			writeError(w, r, err)
			return
		}

		claims := tokens.Claims()
		if _, err := users.SyncIdentity(r.Context(), s.users, users.Identity{UID: claims.Subject, Email: claims.Email, Name: claims.Name}); err != nil {
			writeError(w, r, err)
			return
		}

		session := sessions.Session{
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
			IDTokenNonce: authRequest.OIDCNonce,
		}
		ephemeralState, session, err := s.accountManager.EphemeralState(r.Context(), session)
		if err != nil {
			writeError(w, r, err)
			return
		}

		encoded, err := sessions.Encode(session)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, callbackResponse{
			Session:        encoded,
			RedirectPath:   authRequest.RedirectPath,
			EphemeralState: ephemeralState,
		})
	}
}

type createStateRequest struct {
	JWT string `json:"jwt"`
}

type createStateResponse struct {
	StateID string `json:"state_id"`
}

// CreateStateHandler hands a signed payload to the account manager and
// returns the id it can later be looked up by.
func (s *Server) CreateStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createStateRequest
		if err := s.decodeJSONBody(w, r, &req); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		if req.JWT == "" {
			writeBadRequest(w, "jwt is required")
			return
		}

		sent := sessionFromContext(r.Context())
		id, session, err := s.accountManager.SubmitJWT(r.Context(), req.JWT, sent)
		if headerErr := s.returnSession(w, sent, session, err); headerErr != nil {
			writeError(w, r, headerErr)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, createStateResponse{StateID: id})
	}
}
