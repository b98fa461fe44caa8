package coseal

import (
	"fmt"

	"github.com/noelyahan/impexp"
	"github.com/noelyahan/mergi"
)

// ResizeImage scales a signature image to the given size in pixels so it
// fits inside its stamp box before being watermarked onto the document.
func ResizeImage(inFile, outFile string, width, height float64) error {
	img, err := mergi.Import(impexp.NewFileImporter(inFile))
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	resized, err := mergi.Resize(img, uint(width), uint(height))
	if err != nil {
		return fmt.Errorf("failed to resize image: %w", err)
	}

	if err := mergi.Export(impexp.NewFileExporter(resized, outFile)); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	return nil
}
