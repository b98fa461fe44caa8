package coseal

import (
	"fmt"
	"strings"
)

// Verification payloads are the strings carried inside the QR code on the
// first page of a composed document. Two bit-exact formats exist:
//
//	single-signer: the bare lowercase hex digest of the original document
//	multi-signer:  "MS:" + signing request id
//
// Decoding dispatches purely on the textual prefix, no other heuristic.
const MultiSignPrefix = "MS:"

type PayloadKind int

const (
	PayloadKindDigest PayloadKind = iota
	PayloadKindMultiSign
)

type VerificationPayload struct {
	Kind      PayloadKind
	Digest    Digest
	RequestID string
}

func EncodeDigestPayload(d Digest) string {
	return d.String()
}

func EncodeMultiSignPayload(requestID string) string {
	return MultiSignPrefix + requestID
}

func ParseVerificationPayload(s string) (VerificationPayload, error) {
	if strings.HasPrefix(s, MultiSignPrefix) {
		requestID := strings.TrimPrefix(s, MultiSignPrefix)
		if requestID == "" {
			return VerificationPayload{}, fmt.Errorf("multi-sign payload carries no request id")
		}
		return VerificationPayload{
			Kind:      PayloadKindMultiSign,
			RequestID: requestID,
		}, nil
	}

	d := Digest(s)
	if !d.Valid() {
		return VerificationPayload{}, fmt.Errorf("payload is neither a multi-sign tag nor a hex digest: %q", s)
	}
	return VerificationPayload{
		Kind:   PayloadKindDigest,
		Digest: d,
	}, nil
}
