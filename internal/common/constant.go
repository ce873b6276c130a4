package common

// AccessTokenCookieName is the HTTP-only cookie that carries the session
// token after a successful login.
const AccessTokenCookieName = "access_token"
