package common

const (
	// AuthCookieName is the cookie that may carry the access token when no
	// Authorization header is present.
	AuthCookieName = "jwt"

	// MinPasswordLength is the shortest accepted new password.
	MinPasswordLength = 6
)
