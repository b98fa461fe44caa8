package coseal

import "testing"

func TestSignAndVerify(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("failed to generate key pair: %v", err)
	}

	digest := HashBytes([]byte("original document bytes"))
	sig, err := Sign(digest, priv)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	if !Verify(digest, sig, pub) {
		t.Error("Verify() = false for a valid signature")
	}
}

func TestSignRejectsBadInput(t *testing.T) {
	_, priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("failed to generate key pair: %v", err)
	}

	if _, err := Sign("not-a-digest", priv); err == nil {
		t.Error("Sign() expected error for invalid digest")
	}
	if _, err := Sign(HashBytes([]byte("x")), "%%%not-base64"); err == nil {
		t.Error("Sign() expected error for malformed private key")
	}
	if _, err := Sign(HashBytes([]byte("x")), "c2hvcnQ="); err == nil {
		t.Error("Sign() expected error for truncated private key")
	}
}

// Verify must fail closed: malformed input yields false, never a panic or an
// error that would abort a batch verification.
func TestVerifyFailsClosed(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("failed to generate key pair: %v", err)
	}

	digest := HashBytes([]byte("payload"))
	sig, err := Sign(digest, priv)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	otherPub, _, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("failed to generate key pair: %v", err)
	}

	tests := []struct {
		name      string
		digest    Digest
		signature string
		publicKey string
	}{
		{"Invalid digest", "nope", sig, pub},
		{"Different digest", HashBytes([]byte("tampered")), sig, pub},
		{"Malformed signature", digest, "!!!", pub},
		{"Truncated signature", digest, "c2hvcnQ=", pub},
		{"Malformed public key", digest, sig, "!!!"},
		{"Truncated public key", digest, sig, "c2hvcnQ="},
		{"Wrong public key", digest, sig, otherPub},
		{"Empty everything", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Verify(tt.digest, tt.signature, tt.publicKey) {
				t.Error("Verify() = true, want false")
			}
		})
	}
}
