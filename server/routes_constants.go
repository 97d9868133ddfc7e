package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Sign-in handshake
	RouteSignIn      = "/api/oauth2/sign-in"
	RouteCallback    = "/api/oauth2/callback"
	RouteCreateState = "/api/oauth2/state"

	// Attributes
	RouteAttributes = "/api/attributes"

	// Account manager
	RouteEmailSubscription = "/api/transition-checker-email-subscription"

	// Health checks
	RouteHealthcheck      = "/healthcheck"
	RouteHealthcheckLive  = "/healthcheck/live"
	RouteHealthcheckReady = "/healthcheck/ready"
)
