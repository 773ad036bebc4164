package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// Upstream API errors
	ErrUpstream            = errors.New("upstream api error")
	ErrUpstreamUnavailable = errors.New("upstream api unavailable")
)
