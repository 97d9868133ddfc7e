package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-account-api/sessions"
	"github.com/rs/zerolog/log"
)

type contextKey string

const sessionContextKey contextKey = "account-session"

// RequireSession decodes the session header. A missing or malformed session
// is answered with 401 before the handler runs.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := sessions.Decode(r.Header.Get(s.config.GetSessionHeaderName()))
		if err != nil {
			log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected session header")
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionContextKey, session)))
	})
}

// sessionFromContext returns the session stored by RequireSession
func sessionFromContext(ctx context.Context) sessions.Session {
	session, _ := ctx.Value(sessionContextKey).(sessions.Session)
	return session
}

// setSessionHeader returns the session to the caller, who must store it in
// place of the one it sent since the tokens may have been refreshed.
func (s *Server) setSessionHeader(w http.ResponseWriter, session sessions.Session) error {
	encoded, err := sessions.Encode(session)
	if err != nil {
		return err
	}
	w.Header().Set(s.config.GetSessionHeaderName(), encoded)
	return nil
}

// returnSession sets the session header for a handler's outcome. Successful
// responses always carry it; failed ones carry it only when the tokens changed
// on the way, so a refresh is never lost to an error response.
func (s *Server) returnSession(w http.ResponseWriter, sent, current sessions.Session, err error) error {
	if err != nil && current == sent {
		return nil
	}
	return s.setSessionHeader(w, current)
}
