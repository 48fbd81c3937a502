package remote

import "errors"

var (
	// ErrRemote indicates the document service returned a non-2xx response.
	ErrRemote = errors.New("remote: service error")

	// ErrConnectionFailed indicates the HTTP request itself failed.
	ErrConnectionFailed = errors.New("remote: connection failed")

	// ErrUnauthorized indicates the service rejected the bearer credential.
	ErrUnauthorized = errors.New("remote: unauthorized")

	// ErrEmptyResponse indicates the service returned a 200 with no body.
	ErrEmptyResponse = errors.New("remote: empty response")

	// ErrMissingHeaders indicates a required document header is absent or
	// malformed.
	ErrMissingHeaders = errors.New("remote: missing document headers")

	// ErrDNSLookupFailed indicates an endpoint discovery query failed.
	ErrDNSLookupFailed = errors.New("remote: DNS lookup failed")

	// ErrDNSSECValidationFailed indicates the upstream resolver did not
	// authenticate the discovery records.
	ErrDNSSECValidationFailed = errors.New("remote: DNSSEC validation failed")

	// ErrNoEndpoints indicates discovery found no service endpoints.
	ErrNoEndpoints = errors.New("remote: no endpoints found")
)
