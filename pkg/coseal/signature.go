package coseal

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Signatures are always produced over the document's original digest, never
// over a composed artifact's digest. Composition changes the bytes the moment
// the first stamp lands, so the original digest is the only stable value all
// parties can agree on.

// GenerateKeyPair returns a new Ed25519 key pair, both parts base64 encoded.
func GenerateKeyPair() (publicKey string, privateKey string, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate key pair: %w", err)
	}
	return base64.StdEncoding.EncodeToString(pub), base64.StdEncoding.EncodeToString(priv), nil
}

// Sign signs a digest with a base64 encoded Ed25519 private key and returns
// the base64 encoded signature.
func Sign(digest Digest, privateKey string) (string, error) {
	if !digest.Valid() {
		return "", fmt.Errorf("invalid digest: %q", digest)
	}

	priv, err := base64.StdEncoding.DecodeString(privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(priv) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("invalid private key size: %d", len(priv))
	}

	sig := ed25519.Sign(ed25519.PrivateKey(priv), []byte(digest))
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks a base64 signature over a digest against a base64 encoded
// Ed25519 public key. Any malformed input yields false, never an error, so a
// single bad signature cannot abort a batch verification.
func Verify(digest Digest, signature string, publicKey string) bool {
	if !digest.Valid() {
		return false
	}

	pub, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pub), []byte(digest), sig)
}
