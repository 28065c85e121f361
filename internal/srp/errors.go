package srp

import "errors"

// Sentinel errors returned by the SRP primitives. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrInvalidPublicValue is returned when the peer's public ephemeral is
	// congruent to zero mod N, or the scrambler collapses to zero. Accepting
	// either would let an attacker force a predictable session key.
	ErrInvalidPublicValue = errors.New("srp: invalid public ephemeral value")

	// ErrMalformedValue is returned when a wire value cannot be decoded as
	// a hex-encoded group element.
	ErrMalformedValue = errors.New("srp: malformed wire value")
)
