package render

import (
	"fmt"

	"github.com/s4yuba/x-card-generator/internal/models"
)

// Box is a named element region inside a card, in logical pixels.
type Box struct {
	X, Y, W, H float64
}

func (b Box) inside(width, height float64) bool {
	return b.X >= 0 && b.Y >= 0 && b.X+b.W <= width && b.Y+b.H <= height
}

// Template describes one card design: fixed pixel dimensions, element
// positions and the style set. Owned by the caller; the renderer only
// reads it.
type Template struct {
	Width  float64
	Height float64

	Background models.Color
	Accent     models.Color
	TextColor  models.Color
	Subtle     models.Color
	Border     bool

	NameSize    float64
	HandleSize  float64
	StatsSize   float64
	CaptionSize float64
	NameAlign   models.Align

	Avatar  Box
	Name    Box
	Handle  Box
	Stats   Box
	QR      Box
	Caption Box
}

// DefaultTemplate is an ID-1 card (85.6 x 54 mm) at 300 dpi.
func DefaultTemplate() *Template {
	return &Template{
		Width:  1011,
		Height: 638,

		Background: models.Color{R: 255, G: 255, B: 255},
		Accent:     models.Color{R: 29, G: 155, B: 240},
		TextColor:  models.Color{R: 15, G: 20, B: 25},
		Subtle:     models.Color{R: 83, G: 100, B: 113},
		Border:     true,

		NameSize:    64,
		HandleSize:  44,
		StatsSize:   38,
		CaptionSize: 34,
		NameAlign:   models.AlignCenter,

		Avatar:  Box{X: 385, Y: 70, W: 240, H: 240},
		Name:    Box{X: 60, Y: 348, W: 891, H: 80},
		Handle:  Box{X: 60, Y: 432, W: 891, H: 56},
		Stats:   Box{X: 60, Y: 512, W: 891, H: 50},
		QR:      Box{X: 345, Y: 90, W: 320, H: 320},
		Caption: Box{X: 60, Y: 460, W: 891, H: 48},
	}
}

// Validate enforces the template invariants: positive dimensions and
// every element box inside them.
func (t *Template) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("template dimensions must be positive, got %gx%g", t.Width, t.Height)
	}

	boxes := map[string]Box{
		"avatar":  t.Avatar,
		"name":    t.Name,
		"handle":  t.Handle,
		"stats":   t.Stats,
		"qr":      t.QR,
		"caption": t.Caption,
	}
	for name, box := range boxes {
		if !box.inside(t.Width, t.Height) {
			return fmt.Errorf("%s box %+v exceeds template dimensions %gx%g", name, box, t.Width, t.Height)
		}
	}
	return nil
}
