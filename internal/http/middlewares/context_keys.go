package middlewares

const (
	CtxRequestID = "request_id"

	// identity of the authenticated caller, set by RequireAuth
	ctxUserNameKey = "auth.name"
	ctxRoleKey     = "auth.role"
)
