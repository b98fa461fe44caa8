package coseal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SlotStamp is everything the composer needs to render one signer's seat.
type SlotStamp struct {
	Order    int
	SignerID string
	Status   StampStatus
	SignedAt *time.Time
	// Optional hand-drawn signature image (png/jpg) already on local disk.
	SignatureImagePath string
}

// Composer renders signer stamps and a verification code onto every page of
// a document, producing a new final artifact. It runs strictly after the
// signing workflow completed and is safe to retry: identical inputs yield an
// identical composition plan, and the caller stores the result under its own
// digest, so a retry overwrites the same derived key.
type Composer struct {
	ID  string
	Cfg Config
}

func NewComposer(id string, cfg Config) *Composer {
	return &Composer{ID: id, Cfg: cfg}
}

func (c *Composer) OutputDir() string {
	outputDir := filepath.Join(c.Cfg.OutputDir, c.ID)
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			panic(fmt.Sprintf("failed to create output directory: %s", err))
		}
	}
	return outputDir
}

func (c *Composer) TempDir() string {
	tmpDir := filepath.Join(c.Cfg.TmpDir, c.ID)
	if _, err := os.Stat(tmpDir); os.IsNotExist(err) {
		if err := os.MkdirAll(tmpDir, 0755); err != nil {
			panic(fmt.Sprintf("failed to create tmp directory: %s", err))
		}
	}
	return tmpDir
}

// Compose builds the final artifact from the original document and returns
// its path together with its digest.
func (c *Composer) Compose(originalFile string, slots []SlotStamp, payload string) (string, Digest, error) {
	defer os.RemoveAll(c.TempDir())

	if len(slots) == 0 {
		return "", "", fmt.Errorf("compose requires at least one signer slot")
	}

	ordered := make([]SlotStamp, len(slots))
	copy(ordered, slots)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
	for i, slot := range ordered {
		if slot.Order != i {
			return "", "", fmt.Errorf("slot orders must be contiguous starting at 0, got %d at position %d", slot.Order, i)
		}
	}

	// Strip encryption first so the rest of the pipeline never sees a
	// permission-restricted file.
	currentFile := DecryptBestEffort(originalFile, c.TempDir())

	pageWidth, pageHeight, err := GetPageSize(currentFile, 1)
	if err != nil {
		return "", "", err
	}

	layout, err := PlanPlacements(len(ordered), pageWidth, pageHeight)
	if err != nil {
		return "", "", err
	}

	currentFile, err = c.expand(currentFile, layout)
	if err != nil {
		return "", "", err
	}

	for _, slot := range ordered {
		currentFile, err = c.stampSlot(currentFile, slot, layout.Stamps[slot.Order])
		if err != nil {
			return "", "", fmt.Errorf("failed to stamp slot %d: %w", slot.Order, err)
		}
	}

	currentFile, err = c.embedVerification(currentFile, layout, payload)
	if err != nil {
		return "", "", err
	}

	outputFile := filepath.Join(c.OutputDir(), "signed.pdf")
	if err := copyFile(currentFile, outputFile); err != nil {
		return "", "", fmt.Errorf("failed to finalize composed document: %w", err)
	}

	digest, err := HashFile(outputFile)
	if err != nil {
		return "", "", err
	}

	return outputFile, digest, nil
}

func (c *Composer) expand(inFile string, layout PageLayout) (string, error) {
	out, err := os.CreateTemp(c.TempDir(), "coseal_*.pdf")
	if err != nil {
		return "", err
	}

	if err := ExpandPages(inFile, out.Name(), layout.PageWidth, layout.PageHeight, layout.BottomBand, layout.RightBand); err != nil {
		return "", err
	}
	return out.Name(), nil
}

// stampSlot layers the card frame, the text lines and an optional signature
// image for one slot onto every page.
func (c *Composer) stampSlot(inFile string, slot SlotStamp, placement StampPlacement) (string, error) {
	frameFile, err := os.CreateTemp(c.TempDir(), "coseal_frame_*.pdf")
	if err != nil {
		return "", err
	}

	if err := RenderStampFrame(frameFile.Name(), placement.Width, placement.Height, slot.Status); err != nil {
		return "", err
	}

	out, err := os.CreateTemp(c.TempDir(), "coseal_*.pdf")
	if err != nil {
		return "", err
	}
	if err := ApplyWatermarkToPdf(inFile, out.Name(), nil, frameFile.Name(), placement.X, placement.Y, placement.Rotation); err != nil {
		return "", err
	}
	currentFile := out.Name()

	if slot.Status == StampSigned && slot.SignatureImagePath != "" {
		currentFile, err = c.stampSignatureImage(currentFile, slot, placement)
		if err != nil {
			return "", err
		}
	}

	for i, line := range stampLines(slot) {
		out, err := os.CreateTemp(c.TempDir(), "coseal_*.pdf")
		if err != nil {
			return "", err
		}

		x, y := stampLineOffset(placement, i)
		if err := ApplyTextWatermark(currentFile, out.Name(), nil, line, stampFontPoints, slot.Status.color(), x, y, placement.Rotation); err != nil {
			return "", err
		}
		currentFile = out.Name()
	}

	return currentFile, nil
}

func (c *Composer) stampSignatureImage(inFile string, slot SlotStamp, placement StampPlacement) (string, error) {
	resized, err := os.CreateTemp(c.TempDir(), "coseal_sig_*.png")
	if err != nil {
		return "", err
	}

	imgWidth := placement.Width - 2*stampPadding
	imgHeight := placement.Height * 0.4
	if err := ResizeImage(slot.SignatureImagePath, resized.Name(), imgWidth, imgHeight); err != nil {
		return "", err
	}

	out, err := os.CreateTemp(c.TempDir(), "coseal_*.pdf")
	if err != nil {
		return "", err
	}
	if err := ApplyWatermarkToPdf(inFile, out.Name(), nil, resized.Name(), placement.X+stampPadding, placement.Y+stampPadding, placement.Rotation); err != nil {
		return "", err
	}
	return out.Name(), nil
}

func (c *Composer) embedVerification(inFile string, layout PageLayout, payload string) (string, error) {
	qrFile, err := os.CreateTemp(c.TempDir(), "coseal_qr_*.png")
	if err != nil {
		return "", err
	}
	if err := GenerateQRCode(payload, qrFile.Name(), QRSize); err != nil {
		return "", err
	}

	out, err := os.CreateTemp(c.TempDir(), "coseal_*.pdf")
	if err != nil {
		return "", err
	}
	if err := EmbedQRCodeToPdf(inFile, out.Name(), qrFile.Name(), layout.QRX, layout.QRY); err != nil {
		return "", err
	}
	currentFile := out.Name()

	if c.Cfg.VerifyURLPattern != "" {
		out, err := os.CreateTemp(c.TempDir(), "coseal_*.pdf")
		if err != nil {
			return "", err
		}

		url := fmt.Sprintf(c.Cfg.VerifyURLPattern, payload)
		if err := ApplyTextWatermark(currentFile, out.Name(), []string{"1"}, "Verify this document: "+url, urlFontPoints, colorPending, StampMargin, urlBaseline, 0); err != nil {
			return "", err
		}
		currentFile = out.Name()
	}

	return currentFile, nil
}

const (
	stampFontPoints = 7
	urlFontPoints   = 6
	stampPadding    = 6.0
	stampLineHeight = 10.0
	urlBaseline     = 4.0
	maxLineRunes    = 34
)

func stampLines(slot SlotStamp) []string {
	lines := []string{
		fmt.Sprintf("Signer %d", slot.Order+1),
		truncateLine(slot.SignerID),
	}

	switch slot.Status {
	case StampSigned:
		if slot.SignedAt != nil {
			lines = append(lines, slot.SignedAt.UTC().Format("Signed 2006-01-02 15:04 MST"))
		} else {
			lines = append(lines, "Signed")
		}
	case StampDeclined:
		lines = append(lines, "Declined")
	default:
		lines = append(lines, "Awaiting signature")
	}

	return lines
}

// stampLineOffset returns the bottom-left offset for the i-th text line of a
// stamp. Lines fill the card top-down underneath the glyph row.
func stampLineOffset(placement StampPlacement, i int) (float64, float64) {
	x := placement.X + stampPadding
	y := placement.Y + placement.Height - stampPadding - float64(i+1)*stampLineHeight
	return x, y
}

func truncateLine(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLineRunes {
		return s
	}
	return string(runes[:maxLineRunes-1]) + "~"
}
