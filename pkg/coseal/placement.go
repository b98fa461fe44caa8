package coseal

import "fmt"

// All placement units are PDF points (1/72 inch).
const (
	BottomBandHeight = 96.0
	RightBandWidth   = 72.0
	StampMargin      = 8.0
	QRReserveWidth   = 56.0
	QRSize           = 44.0

	// Strip along the very bottom edge kept free for the verification URL.
	URLStripHeight = 14.0

	// Orders below this go into the fixed bottom zones, everything
	// above stacks into the rotated right margin.
	bottomZoneCount = 3
)

type Zone int

const (
	ZoneBottomLeft Zone = iota
	ZoneBottomCenter
	ZoneBottomRight
	ZoneRightMargin
)

func (z Zone) String() string {
	switch z {
	case ZoneBottomLeft:
		return "bottom-left"
	case ZoneBottomCenter:
		return "bottom-center"
	case ZoneBottomRight:
		return "bottom-right"
	case ZoneRightMargin:
		return "right-margin"
	default:
		return "unknown"
	}
}

// StampPlacement is the box reserved for one signer's stamp. Coordinates are
// relative to the bottom-left corner of the expanded page and repeat
// identically on every page.
type StampPlacement struct {
	Order    int
	Zone     Zone
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64
}

// PageLayout describes how every page of a document is expanded and stamped.
type PageLayout struct {
	// Original page size.
	PageWidth  float64
	PageHeight float64

	// Reserved bands. Pages grow by these amounts, original content is
	// never occluded or scaled.
	BottomBand float64
	RightBand  float64

	Stamps []StampPlacement

	// QR box on the first page, inside the bottom band.
	QRX float64
	QRY float64
}

// ExpandedWidth returns the page width after the right band is reserved.
func (l PageLayout) ExpandedWidth() float64 {
	return l.PageWidth + l.RightBand
}

// ExpandedHeight returns the page height after the bottom band is reserved.
func (l PageLayout) ExpandedHeight() float64 {
	return l.PageHeight + l.BottomBand
}

// PlanPlacements maps an ordered list of n signer slots onto page zones.
// It is a total, deterministic function: the same n and page size always
// produce the same layout, which keeps re-composition idempotent.
func PlanPlacements(n int, pageWidth, pageHeight float64) (PageLayout, error) {
	if n < 1 {
		return PageLayout{}, fmt.Errorf("placement requires at least one signer slot, got %d", n)
	}
	if pageWidth <= 0 || pageHeight <= 0 {
		return PageLayout{}, fmt.Errorf("invalid page size: %.2f x %.2f", pageWidth, pageHeight)
	}

	layout := PageLayout{
		PageWidth:  pageWidth,
		PageHeight: pageHeight,
		BottomBand: BottomBandHeight,
	}
	if n > bottomZoneCount {
		layout.RightBand = RightBandWidth
	}

	// The bottom band keeps a fixed strip on the right for the QR code so
	// zone geometry does not shift when the code is embedded.
	zoneWidth := (pageWidth - QRReserveWidth) / bottomZoneCount

	rightCount := n - bottomZoneCount
	var rightSlotHeight float64
	if rightCount > 0 {
		rightSlotHeight = (pageHeight - 2*StampMargin) / float64(rightCount)
	}

	stamps := make([]StampPlacement, 0, n)
	for order := 0; order < n; order++ {
		if order < bottomZoneCount {
			stamps = append(stamps, StampPlacement{
				Order:  order,
				Zone:   ZoneBottomLeft + Zone(order),
				X:      float64(order)*zoneWidth + StampMargin,
				Y:      URLStripHeight + StampMargin,
				Width:  zoneWidth - 2*StampMargin,
				Height: BottomBandHeight - URLStripHeight - 2*StampMargin,
			})
			continue
		}

		// Stack top-down so reading order matches signing order.
		idx := order - bottomZoneCount
		stamps = append(stamps, StampPlacement{
			Order:    order,
			Zone:     ZoneRightMargin,
			X:        pageWidth + StampMargin,
			Y:        BottomBandHeight + pageHeight - StampMargin - float64(idx+1)*rightSlotHeight,
			Width:    RightBandWidth - 2*StampMargin,
			Height:   rightSlotHeight,
			Rotation: 90,
		})
	}
	layout.Stamps = stamps

	layout.QRX = pageWidth - QRReserveWidth + (QRReserveWidth-QRSize)/2
	layout.QRY = StampMargin

	return layout, nil
}
