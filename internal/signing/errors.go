package signing

import "errors"

var (
	// ErrValidation covers malformed input: bad orders, empty signer lists,
	// signatures that do not verify against the document hash.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorizedSigner means the caller has no seat on the request.
	ErrUnauthorizedSigner = errors.New("signer is not part of this request")

	// ErrStateConflict means the request is in a state that does not accept
	// the attempted action, signing out of turn included.
	ErrStateConflict = errors.New("request state conflict")

	// ErrCompositionFailure wraps failures while producing the final
	// stamped artifact.
	ErrCompositionFailure = errors.New("composition failed")
)
