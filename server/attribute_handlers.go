package server

import (
	"net/http"

	"github.com/jrsteele09/go-account-api/attributes"
)

type attributesResponse struct {
	Values map[string]attributes.Value `json:"values"`
}

// GetAttributesHandler answers GET /api/attributes?attributes[]=name
func (s *Server) GetAttributesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		names := append(query["attributes[]"], query["attributes"]...)
		if len(names) == 0 {
			writeBadRequest(w, "attributes is required")
			return
		}

		sent := sessionFromContext(r.Context())
		values, session, err := s.attributes.Fetch(r.Context(), names, sent)
		if headerErr := s.returnSession(w, sent, session, err); headerErr != nil {
			writeError(w, r, headerErr)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, attributesResponse{Values: values})
	}
}

type updateAttributesRequest struct {
	Attributes map[string]attributes.Value `json:"attributes"`
}

// UpdateAttributesHandler answers PATCH /api/attributes
func (s *Server) UpdateAttributesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateAttributesRequest
		if err := s.decodeJSONBody(w, r, &req); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		if len(req.Attributes) == 0 {
			writeBadRequest(w, "attributes is required")
			return
		}

		sent := sessionFromContext(r.Context())
		session, err := s.attributes.Update(r.Context(), req.Attributes, sent)
		if headerErr := s.returnSession(w, sent, session, err); headerErr != nil {
			writeError(w, r, headerErr)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, struct{}{})
	}
}
