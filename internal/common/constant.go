package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the session
// token on protected calls.
const AccessTokenHeaderName = "access_token"

// DefaultRole is the role bound to every session token issued at login.
const DefaultRole = "customer"
