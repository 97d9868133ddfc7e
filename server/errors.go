package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-account-api/attributes"
	apperrors "github.com/jrsteele09/go-account-api/internal/errors"
	"github.com/rs/zerolog/log"
)

const unknownAttributeNamesType = "unknown-attribute-names"

// problem is the JSON error body
type problem struct {
	Type       string   `json:"type,omitempty"`
	Title      string   `json:"title"`
	Detail     string   `json:"detail,omitempty"`
	Attributes []string `json:"attributes,omitempty"`
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, problem{Title: http.StatusText(http.StatusUnauthorized)})
}

func writeBadRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, problem{Title: http.StatusText(http.StatusBadRequest), Detail: detail})
}

// writeError maps an error from the core to a response. Authentication
// failures are reported without detail; internal errors are logged and
// answered generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var unknown *attributes.UnknownAttributeNamesError
	switch {
	case apperrors.As(err, &unknown):
		writeJSON(w, http.StatusUnprocessableEntity, problem{
			Type:       unknownAttributeNamesType,
			Title:      "Unknown attribute names",
			Attributes: unknown.Names,
		})
	case apperrors.Is(err, apperrors.ErrInvalidSession),
		apperrors.Is(err, apperrors.ErrUnauthorized),
		apperrors.Is(err, apperrors.ErrUserDisabled),
		apperrors.IsOAuthFailure(err):
		log.Info().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("request not authorised")
		writeUnauthorized(w)
	case apperrors.Is(err, apperrors.ErrUpstreamUnavailable):
		log.Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("downstream service failed")
		writeJSON(w, http.StatusBadGateway, problem{Title: http.StatusText(http.StatusBadGateway)})
	case apperrors.Is(err, context.Canceled):
		// The caller went away; nobody will read the response
		log.Debug().Err(err).Msg("request cancelled")
	default:
		log.Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, problem{Title: http.StatusText(http.StatusInternalServerError)})
	}
}
