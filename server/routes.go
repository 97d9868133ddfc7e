package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) initRoutes() {
	// CORS runs ahead of routing so preflight requests are answered for every path
	s.router.Use(middleware.RequestID, middleware.RealIP, s.LoggingMiddleware, s.RecoverMiddleware, s.CorsMiddleware)

	// SIGN IN
	s.handle(s.router, http.MethodGet, RouteSignIn, s.SignInHandler())
	s.handle(s.router, http.MethodPost, RouteCallback, s.CallbackHandler())

	// Routes below need the caller's session
	s.router.Group(func(r chi.Router) {
		r.Use(s.RequireSession)

		s.handle(r, http.MethodPost, RouteCreateState, s.CreateStateHandler())

		s.handle(r, http.MethodGet, RouteAttributes, s.GetAttributesHandler())
		s.handle(r, http.MethodPatch, RouteAttributes, s.UpdateAttributesHandler())

		s.handle(r, http.MethodGet, RouteEmailSubscription, s.GetEmailSubscriptionHandler())
		s.handle(r, http.MethodPost, RouteEmailSubscription, s.SetEmailSubscriptionHandler())
	})

	// HEALTH
	s.handle(s.router, http.MethodGet, RouteHealthcheckLive, s.LiveHandler())
	s.handle(s.router, http.MethodGet, RouteHealthcheckReady, s.ReadyHandler())
	s.handle(s.router, http.MethodGet, RouteHealthcheck, s.ReadyHandler())
}

func (s *Server) handle(r chi.Router, method, pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, method+" "+pattern)
	r.Method(method, pattern, handler)
}
