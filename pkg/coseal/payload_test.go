package coseal

import "testing"

func TestParseVerificationPayload(t *testing.T) {
	digest := HashBytes([]byte("doc"))

	tests := []struct {
		name          string
		payload       string
		wantKind      PayloadKind
		wantRequestID string
		wantDigest    Digest
		wantErr       bool
	}{
		{
			name:       "Bare hex digest",
			payload:    digest.String(),
			wantKind:   PayloadKindDigest,
			wantDigest: digest,
		},
		{
			name:          "Multi-sign tag",
			payload:       "MS:0b5c9e52-7c06-4c15-bd15-1a9f7e2f2f31",
			wantKind:      PayloadKindMultiSign,
			wantRequestID: "0b5c9e52-7c06-4c15-bd15-1a9f7e2f2f31",
		},
		{name: "Empty multi-sign tag", payload: "MS:", wantErr: true},
		{name: "Empty string", payload: "", wantErr: true},
		{name: "Uppercase digest", payload: "AB7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD", wantErr: true},
		{name: "Lowercase prefix is not a tag", payload: "ms:whatever", wantErr: true},
		{name: "Random text", payload: "hello world", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVerificationPayload(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVerificationPayload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.RequestID != tt.wantRequestID {
				t.Errorf("RequestID = %q, want %q", got.RequestID, tt.wantRequestID)
			}
			if got.Digest != tt.wantDigest {
				t.Errorf("Digest = %q, want %q", got.Digest, tt.wantDigest)
			}
		})
	}
}

// The encoded formats are bit-exact: a bare digest and "MS:" + request id,
// no surrounding whitespace.
func TestEncodeRoundTrip(t *testing.T) {
	digest := HashBytes([]byte("single signer"))
	if got := EncodeDigestPayload(digest); got != digest.String() {
		t.Errorf("EncodeDigestPayload() = %q, want %q", got, digest)
	}

	requestID := "4f9d8a54-9c2b-4f7d-8f5e-df5a16f7f2dd"
	encoded := EncodeMultiSignPayload(requestID)
	if encoded != "MS:"+requestID {
		t.Errorf("EncodeMultiSignPayload() = %q", encoded)
	}

	parsed, err := ParseVerificationPayload(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Kind != PayloadKindMultiSign || parsed.RequestID != requestID {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
}
