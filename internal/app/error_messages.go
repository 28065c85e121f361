// SPDX-License-Identifier: Apache-2.0

// Package app contains shared application-layer constants used across the
// server handlers and middleware.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies or log entries to describe the outcome of an operation.
// Keeping them in one place ensures consistent wording throughout the API.
package app

const (
	// MsgInvalidJSON is returned when the request body cannot be decoded.
	MsgInvalidJSON = "Invalid JSON was passed"

	// MsgTokenIsExpired is returned when a JWT bearer token is syntactically
	// valid but its expiry time has passed. Clients treat it as a signal to
	// refresh rather than re-login.
	MsgTokenIsExpired = "token is expired"

	// MsgMalformedSinceParameter is returned when the "since" query
	// parameter of the revision history endpoint is not an integer.
	MsgMalformedSinceParameter = "malformed since parameter"
)
