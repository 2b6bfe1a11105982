package middleware

// Context keys used to store authentication metadata.
const (
	ContextKeyClientID   = "client_id"
	ContextKeyClientRole = "client_role"
	ContextKeyRequestID  = "request_id"

	// ContextKeyError carries an internal error for the request log line.
	ContextKeyError = "request_error"
)

// Roles carried in access tokens.
const (
	RoleClient = "client"
	RoleRunner = "runner"
)
