package domain

import "errors"

var (
	ErrMalformedEvent     = errors.New("malformed event payload")
	ErrMissingCredential  = errors.New("missing credential")
	ErrIdentityRejected   = errors.New("identity rejected")
	ErrScopeNotConfigured = errors.New("tenant scope not configured")
	ErrClientClosed       = errors.New("client closed")
)
