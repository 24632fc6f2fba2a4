package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested entity does not exist upstream
	ErrNotFound = errors.New("entity not found")

	// ErrServerOffline indicates the upstream service is unreachable
	ErrServerOffline = errors.New("upstream service is unreachable")

	// ErrAuthFailed indicates the admin token was rejected
	ErrAuthFailed = errors.New("admin token is invalid")

	// ErrRateLimited indicates the upstream service asked us to slow down
	ErrRateLimited = errors.New("upstream service rate limited the request")
)
