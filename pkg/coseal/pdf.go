package coseal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// RelaxedConfiguration returns a pdfcpu configuration that loads documents
// in permissive mode. Refusing a permission-restricted artifact would be a
// correctness bug here: composing stamps is content-preserving, not a
// security downgrade.
func RelaxedConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func GetPageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, RelaxedConfiguration())
	if err != nil {
		return 0, fmt.Errorf("failed to read page count: %w", err)
	}
	return count, nil
}

// GetPageSize returns the dimensions of the given 1-based page in points.
func GetPageSize(path string, page int) (float64, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	dims, err := api.PageDims(f, RelaxedConfiguration())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	if page < 1 || page > len(dims) {
		return 0, 0, fmt.Errorf("page %d out of range, pdf has %d pages", page, len(dims))
	}

	return dims[page-1].Width, dims[page-1].Height, nil
}

// DecryptBestEffort tries to strip encryption from a PDF so stricter
// downstream processing never chokes on a permission-restricted input. On
// any failure the original file is returned unchanged, encryption must never
// surface as a hard failure to the caller.
func DecryptBestEffort(inFile, tmpDir string) string {
	out, err := os.CreateTemp(tmpDir, "coseal_dec_*.pdf")
	if err != nil {
		return inFile
	}
	out.Close()

	if err := api.DecryptFile(inFile, out.Name(), RelaxedConfiguration()); err != nil {
		os.Remove(out.Name())
		return inFile
	}
	return out.Name()
}

// ExpandPages grows the media and crop box of every page by the given bottom
// and right bands. The original content keeps its coordinates, the page is
// expanded rather than cropped so content is never occluded.
func ExpandPages(inFile, outFile string, pageWidth, pageHeight, bottom, right float64) error {
	rect := types.NewRectangle(0, -bottom, pageWidth+right, pageHeight)
	pb := &model.PageBoundaries{
		Media: &model.Box{Rect: rect},
		Crop:  &model.Box{Rect: rect},
	}

	if err := api.AddBoxesFile(inFile, outFile, nil, pb, RelaxedConfiguration()); err != nil {
		return fmt.Errorf("failed to expand page boundaries: %w", err)
	}
	return nil
}

// ApplyWatermarkToPdf applies a pdf or image watermark on top of the given
// pages (all pages when selectedPages is empty). Position is the offset of
// the watermark from the bottom-left corner of the page, rotation in degrees.
func ApplyWatermarkToPdf(inFile, outFile string, selectedPages []string, watermarkFile string, posX, posY, rotation float64) error {
	ext := filepath.Ext(watermarkFile)
	// scale:1 abs keeps the watermark at its own size. pdfcpu anchors at
	// the chosen pos corner, offsets grow towards the page center.
	description := fmt.Sprintf("pos:bl, off:%.2f %.2f, scale:1 abs, rotation:%.0f", posX, posY, rotation)

	switch ext {
	case ".pdf":
		return api.AddPDFWatermarksFile(inFile, outFile, selectedPages, true, watermarkFile, description, RelaxedConfiguration())
	case ".png", ".jpg", ".jpeg":
		return api.AddImageWatermarksFile(inFile, outFile, selectedPages, true, watermarkFile, description, RelaxedConfiguration())
	default:
		return fmt.Errorf("unsupported watermark file type: %s", ext)
	}
}

// ApplyTextWatermark stamps a single line of text at the given offset from
// the bottom-left corner. Uses a PDF core font so no font assets are needed.
func ApplyTextWatermark(inFile, outFile string, selectedPages []string, text string, points int, hexColor string, posX, posY, rotation float64) error {
	description := fmt.Sprintf("font:Helvetica, points:%d, fillcol:%s, pos:bl, off:%.2f %.2f, scale:1 abs, rotation:%.0f",
		points, hexColor, posX, posY, rotation)

	if err := api.AddTextWatermarksFile(inFile, outFile, selectedPages, true, text, description, RelaxedConfiguration()); err != nil {
		return fmt.Errorf("failed to apply text watermark: %w", err)
	}
	return nil
}

// EmbedQRCodeToPdf places a QR code image at the given offset on the first
// page only.
func EmbedQRCodeToPdf(inFile, outFile, qrCodePath string, posX, posY float64) error {
	description := fmt.Sprintf("pos:bl, off:%.2f %.2f, scale:1 abs, rotation:0", posX, posY)
	err := api.AddImageWatermarksFile(inFile, outFile, []string{"1"}, true, qrCodePath, description, RelaxedConfiguration())
	if err != nil {
		return fmt.Errorf("failed to embed QR code in PDF: %w", err)
	}
	return nil
}
