// Package compositor places rendered cards onto fixed-size pages. The
// layout math is a fixed-grid tiler, not a general bin packer: every
// card on a page set has the same frame size, so placement reduces to
// integer row/column arithmetic.
package compositor

import (
	"math"

	"github.com/s4yuba/x-card-generator/internal/carderr"
	"github.com/s4yuba/x-card-generator/internal/models"
)

// PageSize names a supported paper size.
type PageSize string

const (
	PageA4     PageSize = "A4"
	PageLetter PageSize = "Letter"
)

// Dimensions returns the paper size in millimeters (portrait).
func (p PageSize) Dimensions() (width, height float64) {
	switch p {
	case PageLetter:
		return 215.9, 279.4
	default:
		return 210, 297
	}
}

// DuplexMode selects how card backs are laid out.
type DuplexMode string

const (
	// DuplexNone emits fronts only.
	DuplexNone DuplexMode = "none"
	// DuplexSequential emits the full front page set followed by a
	// mirrored back page set, for long-edge duplex printing.
	DuplexSequential DuplexMode = "sequential"
	// DuplexSplit puts each card's front on the left half of a page
	// and its back at the mirrored spot on the right half.
	DuplexSplit DuplexMode = "split"
)

// TileConfig is the complete geometry input for one layout run. All
// lengths are millimeters.
type TileConfig struct {
	PageSize PageSize
	Margin   float64
	Spacing  float64

	// Columns/Rows of zero mean "fit as many as possible". Explicit
	// values are clamped so cards never overlap or leave the content
	// area, and spacing is then recomputed by evenly dividing the
	// leftover space so the page tiles exactly.
	Columns int
	Rows    int

	CardWidth  float64
	CardHeight float64

	// Back frame size; zero values inherit the front frame.
	BackWidth  float64
	BackHeight float64

	Duplex DuplexMode
}

func DefaultTileConfig() TileConfig {
	return TileConfig{
		PageSize:   PageA4,
		Margin:     10,
		Spacing:    5,
		CardWidth:  85.6,
		CardHeight: 54,
		Duplex:     DuplexNone,
	}
}

func (c TileConfig) backFrame() (w, h float64) {
	w, h = c.BackWidth, c.BackHeight
	if w <= 0 {
		w = c.CardWidth
	}
	if h <= 0 {
		h = c.CardHeight
	}
	return w, h
}

// grid is the resolved geometry for one page set.
type grid struct {
	cols, rows         int
	hSpacing, vSpacing float64
	cardW, cardH       float64
	originX, originY   float64
}

func (g grid) perPage() int { return g.cols * g.rows }

func (g grid) position(index int) (x, y float64) {
	row := index / g.cols
	col := index % g.cols
	return g.place(row, col)
}

func (g grid) place(row, col int) (x, y float64) {
	x = g.originX + float64(col)*(g.cardW+g.hSpacing)
	y = g.originY + float64(row)*(g.cardH+g.vSpacing)
	return x, y
}

// solveGrid computes the grid for a content area. Explicit counts
// override the computed fit but are clamped to what physically fits;
// with an explicit count the spacing is rebalanced so the row tiles
// the content area exactly.
func solveGrid(contentW, contentH, cardW, cardH, spacing float64, columns, rows int, originX, originY float64) (grid, error) {
	if cardW <= 0 || cardH <= 0 {
		return grid{}, carderr.Newf(carderr.CodeInvalidLayoutConfig,
			"card frame must be positive, got %gx%g mm", cardW, cardH)
	}
	if cardW > contentW || cardH > contentH {
		return grid{}, carderr.Newf(carderr.CodeInvalidLayoutConfig,
			"card frame %gx%g mm exceeds usable page area %gx%g mm", cardW, cardH, contentW, contentH)
	}

	g := grid{cardW: cardW, cardH: cardH, originX: originX, originY: originY,
		hSpacing: spacing, vSpacing: spacing}

	// Max counts that physically fit: n cards need n*card + (n-1)*spacing.
	maxCols := int(math.Floor((contentW + spacing) / (cardW + spacing)))
	maxRows := int(math.Floor((contentH + spacing) / (cardH + spacing)))

	g.cols = int(math.Floor(contentW / (cardW + spacing)))
	g.rows = int(math.Floor(contentH / (cardH + spacing)))
	if g.cols == 0 && maxCols > 0 {
		g.cols = maxCols
	}
	if g.rows == 0 && maxRows > 0 {
		g.rows = maxRows
	}

	if columns > 0 {
		g.cols = min(columns, maxCols)
		g.hSpacing = redistribute(contentW, cardW, g.cols)
	}
	if rows > 0 {
		g.rows = min(rows, maxRows)
		g.vSpacing = redistribute(contentH, cardH, g.rows)
	}

	if g.perPage() == 0 {
		return grid{}, carderr.Newf(carderr.CodeInvalidLayoutConfig,
			"no card fits the %gx%g mm content area", contentW, contentH)
	}
	return g, nil
}

// redistribute divides the leftover width evenly between n cards.
func redistribute(content, card float64, n int) float64 {
	if n <= 1 {
		return 0
	}
	return (content - float64(n)*card) / float64(n-1)
}

// Layout computes the placement plan for cardCount cards. Pure: same
// inputs always give the same plan. Zero cards yields an empty plan
// with zero pages.
func Layout(cardCount int, cfg TileConfig) (*models.LayoutPlan, error) {
	pageW, pageH := cfg.PageSize.Dimensions()
	contentW := pageW - 2*cfg.Margin
	contentH := pageH - 2*cfg.Margin
	if contentW <= 0 || contentH <= 0 {
		return nil, carderr.Newf(carderr.CodeInvalidLayoutConfig,
			"margin %g mm leaves no content area on %s", cfg.Margin, cfg.PageSize)
	}

	switch cfg.Duplex {
	case DuplexSplit:
		return layoutSplit(cardCount, cfg, contentW, contentH)
	case DuplexSequential:
		return layoutSequential(cardCount, cfg, contentW, contentH)
	default:
		return layoutSimple(cardCount, cfg, contentW, contentH)
	}
}

func layoutSimple(cardCount int, cfg TileConfig, contentW, contentH float64) (*models.LayoutPlan, error) {
	g, err := solveGrid(contentW, contentH, cfg.CardWidth, cfg.CardHeight,
		cfg.Spacing, cfg.Columns, cfg.Rows, cfg.Margin, cfg.Margin)
	if err != nil {
		return nil, err
	}

	plan := &models.LayoutPlan{}
	for i := 0; i < cardCount; i++ {
		page := i / g.perPage()
		x, y := g.position(i % g.perPage())
		plan.Placements = append(plan.Placements, models.Placement{
			PageIndex: page, CardIndex: i, X: x, Y: y,
		})
		// Pages open only when an index advances into them.
		if page+1 > plan.PageCount {
			plan.PageCount = page + 1
		}
	}
	return plan, nil
}

// layoutSequential emits the front page set and then a back page set.
// Each back is mirrored about the page's vertical center line so it
// coincides with its front after a long-edge duplex pass.
func layoutSequential(cardCount int, cfg TileConfig, contentW, contentH float64) (*models.LayoutPlan, error) {
	front, err := solveGrid(contentW, contentH, cfg.CardWidth, cfg.CardHeight,
		cfg.Spacing, cfg.Columns, cfg.Rows, cfg.Margin, cfg.Margin)
	if err != nil {
		return nil, err
	}

	backW, backH := cfg.backFrame()
	if backW > contentW || backH > contentH {
		return nil, carderr.Newf(carderr.CodeInvalidLayoutConfig,
			"back frame %gx%g mm exceeds usable page area %gx%g mm", backW, backH, contentW, contentH)
	}
	pageW, _ := cfg.PageSize.Dimensions()

	plan := &models.LayoutPlan{}
	frontPages := 0
	for i := 0; i < cardCount; i++ {
		page := i / front.perPage()
		x, y := front.position(i % front.perPage())
		plan.Placements = append(plan.Placements, models.Placement{
			PageIndex: page, CardIndex: i, X: x, Y: y,
		})
		if page+1 > frontPages {
			frontPages = page + 1
		}
	}
	for i := 0; i < cardCount; i++ {
		page := i / front.perPage()
		x, y := front.position(i % front.perPage())
		// A differently sized back frame stays centered on the
		// mirrored front slot.
		bx := pageW - x - cfg.CardWidth + (cfg.CardWidth-backW)/2
		by := y + (cfg.CardHeight-backH)/2
		plan.Placements = append(plan.Placements, models.Placement{
			PageIndex: frontPages + page, CardIndex: i, Back: true, X: bx, Y: by,
		})
	}
	plan.PageCount = frontPages * 2
	return plan, nil
}

// layoutSplit halves the content area: fronts tile the left half and
// each back sits at the same row/col in the right half.
func layoutSplit(cardCount int, cfg TileConfig, contentW, contentH float64) (*models.LayoutPlan, error) {
	halfW := (contentW - cfg.Spacing) / 2
	front, err := solveGrid(halfW, contentH, cfg.CardWidth, cfg.CardHeight,
		cfg.Spacing, cfg.Columns, cfg.Rows, cfg.Margin, cfg.Margin)
	if err != nil {
		return nil, err
	}

	backW, backH := cfg.backFrame()
	backOriginX := cfg.Margin + halfW + cfg.Spacing
	back, err := solveGrid(halfW, contentH, backW, backH,
		cfg.Spacing, front.cols, front.rows, backOriginX, cfg.Margin)
	if err != nil {
		return nil, err
	}
	if back.cols != front.cols || back.rows != front.rows {
		return nil, carderr.Newf(carderr.CodeInvalidLayoutConfig,
			"back frame %gx%g mm cannot pair with the %dx%d front grid", backW, backH, front.cols, front.rows)
	}

	plan := &models.LayoutPlan{}
	for i := 0; i < cardCount; i++ {
		page := i / front.perPage()
		pos := i % front.perPage()

		fx, fy := front.position(pos)
		plan.Placements = append(plan.Placements, models.Placement{
			PageIndex: page, CardIndex: i, X: fx, Y: fy,
		})
		bx, by := back.position(pos)
		plan.Placements = append(plan.Placements, models.Placement{
			PageIndex: page, CardIndex: i, Back: true, X: bx, Y: by,
		})

		if page+1 > plan.PageCount {
			plan.PageCount = page + 1
		}
	}
	return plan, nil
}
