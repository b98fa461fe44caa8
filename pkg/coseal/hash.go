package coseal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashAlgo identifies the canonical content hash function. Stored on every
// document so the scheme can be rotated without breaking old records.
const HashAlgo = "sha256"

// Digest is the lowercase hex encoding of the canonical content hash.
type Digest string

const digestHexLen = sha256.Size * 2

func (d Digest) String() string {
	return string(d)
}

// Valid reports whether d is a well-formed lowercase hex digest.
func (d Digest) Valid() bool {
	if len(d) != digestHexLen {
		return false
	}
	for _, c := range d {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// HashBytes hashes the exact byte sequence supplied. No normalization is
// performed, any canonicalization drift would silently break verification.
func HashBytes(data []byte) Digest {
	sum := sha256.Sum256(data)
	return Digest(hex.EncodeToString(sum[:]))
}

func HashReader(r io.Reader) (Digest, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer f.Close()

	return HashReader(f)
}
