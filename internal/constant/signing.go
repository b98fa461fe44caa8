package constant

type DocumentStatus int

const (
	DocumentStatusUploaded DocumentStatus = iota
	DocumentStatusSigning
	DocumentStatusFinalized
)

type RequestStatus int

const (
	RequestStatusActive RequestStatus = iota
	RequestStatusCompleted
	RequestStatusRejected
	RequestStatusExpired
)

// Terminal reports whether no further signer action is accepted.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusRejected || s == RequestStatusExpired
}

type SlotStatus int

const (
	SlotStatusPending SlotStatus = iota
	SlotStatusSigned
	SlotStatusDeclined
)

type VerificationResult int

const (
	VerificationResultValid VerificationResult = iota
	VerificationResultInProgress
	VerificationResultInvalid
	VerificationResultNotFound
)

func (r VerificationResult) String() string {
	switch r {
	case VerificationResultValid:
		return "valid"
	case VerificationResultInProgress:
		return "in_progress"
	case VerificationResultInvalid:
		return "invalid"
	case VerificationResultNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
