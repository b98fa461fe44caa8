package coseal

import (
	"fmt"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
)

/*
 * Attention: tdewolff/canvas uses mm as the unit of measurement, all input
 * from this package takes points and converts to mm where needed.
 */

const stampDPI = 72

type StampStatus int

const (
	StampPending StampStatus = iota
	StampSigned
	StampDeclined
)

const (
	colorSigned   = "#1b7f4d"
	colorPending  = "#9aa0a6"
	colorDeclined = "#b3261e"
)

func (s StampStatus) color() string {
	switch s {
	case StampSigned:
		return colorSigned
	case StampDeclined:
		return colorDeclined
	default:
		return colorPending
	}
}

func ptToMM(pt float64) float64 {
	return (pt * 25.4) / stampDPI
}

// RenderStampFrame draws the stamp card for one signer slot as a standalone
// PDF: a rounded border, a faint fill and a status glyph in the top-right
// corner. Pending slots come out greyed so a partially signed document still
// previews with full context. Text lines are layered on separately with a
// core-font text watermark.
func RenderStampFrame(outFile string, widthPt, heightPt float64, status StampStatus) error {
	w := ptToMM(widthPt)
	h := ptToMM(heightPt)

	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)

	ctx.SetStrokeColor(canvas.Hex(status.color()))
	ctx.SetStrokeWidth(0.35)
	if status == StampPending {
		ctx.SetFillColor(canvas.Hex("#f1f3f4"))
	} else {
		ctx.SetFillColor(canvas.Transparent)
	}
	ctx.DrawPath(0.2, 0.2, canvas.RoundedRectangle(w-0.4, h-0.4, 1.2))

	drawStatusGlyph(ctx, status, w, h)

	if err := renderers.Write(outFile, c); err != nil {
		return fmt.Errorf("failed to write stamp frame: %w", err)
	}
	return nil
}

// glyph box side in mm, anchored to the top-right corner of the card
const glyphSize = 3.2

func drawStatusGlyph(ctx *canvas.Context, status StampStatus, w, h float64) {
	x := w - glyphSize - 1.2
	y := h - glyphSize - 1.2

	ctx.SetStrokeColor(canvas.Hex(status.color()))
	ctx.SetStrokeWidth(0.5)
	ctx.SetFillColor(canvas.Transparent)

	switch status {
	case StampSigned:
		// check mark
		p := &canvas.Path{}
		p.MoveTo(0, glyphSize*0.45)
		p.LineTo(glyphSize*0.35, glyphSize*0.1)
		p.LineTo(glyphSize, glyphSize*0.9)
		ctx.DrawPath(x, y, p)
	case StampDeclined:
		// cross
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(glyphSize, glyphSize)
		p.MoveTo(0, glyphSize)
		p.LineTo(glyphSize, 0)
		ctx.DrawPath(x, y, p)
	default:
		// empty circle for a pending seat
		ctx.DrawPath(x+glyphSize/2, y+glyphSize/2, canvas.Circle(glyphSize/2))
	}
}
