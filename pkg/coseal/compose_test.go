package coseal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// newFixturePDF builds a small single-page pdf on the fly so the suite does
// not depend on checked-in binary fixtures.
func newFixturePDF(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	img := filepath.Join(dir, "page.png")
	if err := GenerateQRCode("fixture", img, 200); err != nil {
		t.Fatalf("failed to create fixture image: %v", err)
	}

	pdf := filepath.Join(dir, "fixture.pdf")
	if err := api.ImportImagesFile([]string{img}, pdf, nil, RelaxedConfiguration()); err != nil {
		t.Fatalf("failed to create fixture pdf: %v", err)
	}
	return pdf
}

func newTestConfig(t *testing.T) Config {
	t.Helper()
	base := t.TempDir()
	return Config{
		OutputDir:        filepath.Join(base, "output"),
		TmpDir:           filepath.Join(base, "tmp"),
		VerifyURLPattern: "https://coseal.example.com/verify/%s",
	}
}

func TestComposeFourSigners(t *testing.T) {
	original := newFixturePDF(t)
	originalDigest, err := HashFile(original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	signedAt := time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC)
	slots := []SlotStamp{
		{Order: 0, SignerID: "alice@example.com", Status: StampSigned, SignedAt: &signedAt},
		{Order: 1, SignerID: "bob@example.com", Status: StampSigned, SignedAt: &signedAt},
		{Order: 2, SignerID: "carol@example.com", Status: StampSigned, SignedAt: &signedAt},
		{Order: 3, SignerID: "dave@example.com", Status: StampPending},
	}

	composer := NewComposer("test-compose", newTestConfig(t))
	outFile, finalDigest, err := composer.Compose(original, slots, EncodeMultiSignPayload("req-1"))
	if err != nil {
		t.Fatalf("Compose() unexpected error: %v", err)
	}

	info, err := os.Stat(outFile)
	if err != nil || info.Size() == 0 {
		t.Fatalf("composed artifact missing or empty: %v", err)
	}
	if !finalDigest.Valid() {
		t.Errorf("invalid final digest %q", finalDigest)
	}
	if finalDigest == originalDigest {
		t.Error("composition did not change the artifact bytes")
	}

	// Stamping repeats on every page, the page count must not change.
	pages, err := GetPageCount(outFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pages != 1 {
		t.Errorf("page count = %d, want 1", pages)
	}
}

func TestComposeRejectsBadSlots(t *testing.T) {
	original := newFixturePDF(t)
	composer := NewComposer("test-compose-bad", newTestConfig(t))

	if _, _, err := composer.Compose(original, nil, "payload"); err == nil {
		t.Error("expected error for empty slot list")
	}

	gap := []SlotStamp{{Order: 0}, {Order: 2}}
	if _, _, err := composer.Compose(original, gap, "payload"); err == nil {
		t.Error("expected error for non-contiguous orders")
	}
}
