package coseal

import (
	"fmt"

	"github.com/skip2/go-qrcode"
	svgqrcode "github.com/wamuir/svg-qr-code"
)

// Medium error correction keeps the code scannable after PDF rasterization
// or printing.

// GenerateQRCode writes a square QR code PNG of the given pixel size. For
// embedding into a PDF, QRSize is enough.
func GenerateQRCode(payload, outputPath string, size int) error {
	err := qrcode.WriteFile(payload, qrcode.Medium, size, outputPath)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	return nil
}

// GenerateQRCodePNG returns the QR code PNG bytes of the given pixel size.
func GenerateQRCodePNG(payload string, size int) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// GenerateQRCodeSVG returns the QR code as an SVG document, used by the
// verification page where a scalable image is preferable to a raster one.
func GenerateQRCodeSVG(payload string) (string, error) {
	qr, err := svgqrcode.New(payload)
	if err != nil {
		return "", fmt.Errorf("failed to generate SVG QR code: %w", err)
	}
	return qr.String(), nil
}
