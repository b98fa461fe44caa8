package coseal

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateQRCodePNGDeterministic(t *testing.T) {
	payload := EncodeMultiSignPayload("7b0d7a80-51d3-4f2e-9f43-6f2e8f6f9c11")

	first, err := GenerateQRCodePNG(payload, 128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("empty png")
	}

	again, err := GenerateQRCodePNG(payload, 128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first, again) {
		t.Error("QR code png is not deterministic for identical payloads")
	}
}

func TestGenerateQRCodeSVG(t *testing.T) {
	svg, err := GenerateQRCodeSVG(EncodeDigestPayload(HashBytes([]byte("doc"))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(svg, "<svg") {
		t.Errorf("expected svg document, got %q", svg[:min(len(svg), 40)])
	}
}
