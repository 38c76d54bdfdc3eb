package models

// Color is an opaque RGB triple used by templates and draw ops.
type Color struct {
	R, G, B int
}

// Align selects horizontal text alignment within an element box.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// DrawOp is one immutable drawing instruction on a card surface.
// Coordinates are logical pixels relative to the surface origin; the
// document writer translates them into page units at composition time.
type DrawOp interface {
	op()
}

// FillRect fills a rectangle. With W or H zero it covers nothing.
type FillRect struct {
	X, Y, W, H float64
	Color      Color
}

// FillCircle fills a circle. Used for the avatar placeholder and the
// verified badge backdrop.
type FillCircle struct {
	CX, CY, R float64
	Color     Color
}

// DrawImage places decoded image bytes. Format is the registered image
// type ("png", "jpg"). CircleClip clips the image to the inscribed
// circle of its box.
type DrawImage struct {
	Name       string
	Bytes      []byte
	Format     string
	X, Y, W, H float64
	CircleClip bool
}

// DrawText places a single line of text. Size is in logical pixels.
type DrawText struct {
	Text    string
	X, Y, W float64
	Size    float64
	Color   Color
	Align   Align
	Bold    bool
}

func (FillRect) op()   {}
func (FillCircle) op() {}
func (DrawImage) op()  {}
func (DrawText) op()   {}

// Surface is an ordered list of draw instructions over a fixed-size
// region. It is built once by the renderer and never mutated afterwards.
type Surface struct {
	Width  float64
	Height float64
	Ops    []DrawOp
}

// Card is one rendered front/back unit for a single profile. Back is
// nil when double-sided output was not requested. Username and
// ProfileURL identify the source for error attribution.
type Card struct {
	Username   string
	ProfileURL string
	Front      Surface
	Back       *Surface
}
