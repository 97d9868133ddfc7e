package server

import "net/http"

type emailSubscriptionResponse struct {
	HasSubscription bool `json:"has_subscription"`
}

// GetEmailSubscriptionHandler answers GET /api/transition-checker-email-subscription
func (s *Server) GetEmailSubscriptionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sent := sessionFromContext(r.Context())
		has, session, err := s.accountManager.HasEmailSubscription(r.Context(), sent)
		if headerErr := s.returnSession(w, sent, session, err); headerErr != nil {
			writeError(w, r, headerErr)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, emailSubscriptionResponse{HasSubscription: has})
	}
}

type setEmailSubscriptionRequest struct {
	Slug string `json:"slug"`
}

// SetEmailSubscriptionHandler answers POST /api/transition-checker-email-subscription
func (s *Server) SetEmailSubscriptionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setEmailSubscriptionRequest
		if err := s.decodeJSONBody(w, r, &req); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		if req.Slug == "" {
			writeBadRequest(w, "slug is required")
			return
		}

		sent := sessionFromContext(r.Context())
		session, err := s.accountManager.SetEmailSubscription(r.Context(), req.Slug, sent)
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
