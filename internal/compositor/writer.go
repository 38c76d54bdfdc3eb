package compositor

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/s4yuba/x-card-generator/internal/models"
)

// DocumentWriter is the low-level page/drawing surface the compositor
// emits into. Coordinates are millimeters from the page's top left.
type DocumentWriter interface {
	NewPage()
	DrawRect(x, y, w, h float64, color models.Color)
	DrawCircle(cx, cy, r float64, color models.Color)
	DrawImage(name string, data []byte, format string, x, y, w, h float64, circleClip bool) error
	DrawText(text string, x, y, w, size float64, color models.Color, align models.Align, bold bool)
	Output() ([]byte, error)
}

// PDFWriter implements DocumentWriter over gofpdf.
type PDFWriter struct {
	pdf        *gofpdf.Fpdf
	registered map[string]bool
}

func NewPDFWriter(size PageSize) *PDFWriter {
	pdf := gofpdf.New("P", "mm", string(size), "")
	pdf.SetAutoPageBreak(false, 0)
	return &PDFWriter{pdf: pdf, registered: make(map[string]bool)}
}

func (w *PDFWriter) NewPage() {
	w.pdf.AddPage()
}

func (w *PDFWriter) DrawRect(x, y, width, height float64, color models.Color) {
	w.pdf.SetFillColor(color.R, color.G, color.B)
	w.pdf.Rect(x, y, width, height, "F")
}

func (w *PDFWriter) DrawCircle(cx, cy, r float64, color models.Color) {
	w.pdf.SetFillColor(color.R, color.G, color.B)
	w.pdf.Circle(cx, cy, r, "F")
}

func (w *PDFWriter) DrawImage(name string, data []byte, format string, x, y, width, height float64, circleClip bool) error {
	if !w.registered[name] {
		opts := gofpdf.ImageOptions{ImageType: format, ReadDpi: false}
		w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		if w.pdf.Err() {
			return fmt.Errorf("failed to register image %s: %s", name, w.pdf.Error())
		}
		w.registered[name] = true
	}

	if circleClip {
		w.pdf.ClipCircle(x+width/2, y+height/2, width/2, false)
	}
	w.pdf.ImageOptions(name, x, y, width, height, false,
		gofpdf.ImageOptions{ImageType: format}, 0, "")
	if circleClip {
		w.pdf.ClipEnd()
	}

	if w.pdf.Err() {
		return fmt.Errorf("failed to draw image %s: %s", name, w.pdf.Error())
	}
	return nil
}

func (w *PDFWriter) DrawText(text string, x, y, width, size float64, color models.Color, align models.Align, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	w.pdf.SetFont("Helvetica", style, 0)
	w.pdf.SetFontUnitSize(size)
	w.pdf.SetTextColor(color.R, color.G, color.B)

	alignStr := "L"
	switch align {
	case models.AlignCenter:
		alignStr = "C"
	case models.AlignRight:
		alignStr = "R"
	}

	w.pdf.SetXY(x, y)
	w.pdf.CellFormat(width, size*1.2, w.pdf.UnicodeTranslatorFromDescriptor("")(text),
		"", 0, alignStr, false, 0, "")
}

func (w *PDFWriter) Output() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
