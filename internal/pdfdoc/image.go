package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Validate checks that data is a readable PDF and returns its page count.
func Validate(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("ensure page count: %w", err)
	}
	return ctx.PageCount, nil
}

// PageImage returns the raw bytes of the largest embedded image on the
// given zero-based page. Signature cards are scans, so the page image is
// the whole card; it is what gets sent to the OCR engine.
func PageImage(data []byte, pageIndex int) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pageNr := strconv.Itoa(pageIndex + 1)
	pageImages, err := api.ExtractImagesRaw(bytes.NewReader(data), []string{pageNr}, conf)
	if err != nil {
		return nil, fmt.Errorf("extract images for page %d: %w", pageIndex, err)
	}

	var largest []byte
	for _, byObj := range pageImages {
		for _, img := range byObj {
			if img.PageNr != pageIndex+1 {
				continue
			}
			raw, err := io.ReadAll(img)
			if err != nil {
				continue
			}
			if len(raw) > len(largest) {
				largest = raw
			}
		}
	}
	if len(largest) == 0 {
		return nil, fmt.Errorf("no image found on page %d", pageIndex)
	}
	return largest, nil
}
