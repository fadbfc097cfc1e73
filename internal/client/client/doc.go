// Package client contains the client-side building blocks for minibank.
//
// It provides a transport-agnostic API contract (Client), its gRPC
// implementation (GRPCClient) which attaches the session token to protected
// calls, and InitDatabase which opens the local SQLite store and applies the
// embedded goose migrations.
//
// # Error Handling
//
// Transport conditions are exposed as sentinel errors matched with
// errors.Is: ErrUnavailable and ErrUnauthorized. Business rejections from the
// server come back as *common.Error values carrying the server's code and
// message.
package client
