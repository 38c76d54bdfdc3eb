package compositor

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/s4yuba/x-card-generator/internal/carderr"
	"github.com/s4yuba/x-card-generator/internal/models"
)

// Compositor walks a layout plan and replays each card's draw
// instructions into a DocumentWriter, scaled from the card's logical
// pixel space into its frame on the page.
type Compositor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Compositor {
	return &Compositor{logger: logger.With("component", "compositor")}
}

// Compose lays out and draws cards into a fresh document, returning the
// finished bytes. An empty card list yields a zero-page document error
// upstream; callers guard it, but Compose is safe to call regardless.
func (c *Compositor) Compose(cards []*models.Card, cfg TileConfig, writer DocumentWriter) ([]byte, error) {
	plan, err := Layout(len(cards), cfg)
	if err != nil {
		return nil, err
	}

	// Placements grouped per page, preserving plan order within one.
	byPage := make([][]models.Placement, plan.PageCount)
	for _, p := range plan.Placements {
		byPage[p.PageIndex] = append(byPage[p.PageIndex], p)
	}

	backW, backH := cfg.backFrame()

	for pageIndex := 0; pageIndex < plan.PageCount; pageIndex++ {
		writer.NewPage()
		placements := byPage[pageIndex]
		sort.SliceStable(placements, func(i, j int) bool {
			return placements[i].CardIndex < placements[j].CardIndex
		})

		for _, p := range placements {
			card := cards[p.CardIndex]
			surface := &card.Front
			frameW, frameH := cfg.CardWidth, cfg.CardHeight
			if p.Back {
				if card.Back == nil {
					c.logger.Warn("card has no back side, leaving slot empty", "username", card.Username)
					continue
				}
				surface = card.Back
				frameW, frameH = backW, backH
			}

			if err := c.drawSurface(writer, surface, p.X, p.Y, frameW, frameH); err != nil {
				return nil, carderr.Wrap(carderr.CodeRenderError,
					fmt.Sprintf("drawing card for @%s failed", card.Username), err)
			}
		}
	}

	c.logger.Info("document composed", "cards", len(cards), "pages", plan.PageCount)
	return writer.Output()
}

// drawSurface replays one surface's ops offset to (originX, originY)
// and scaled from logical pixels to the frame's millimeters.
func (c *Compositor) drawSurface(writer DocumentWriter, surface *models.Surface, originX, originY, frameW, frameH float64) error {
	if surface.Width <= 0 || surface.Height <= 0 {
		return fmt.Errorf("surface has no area")
	}
	scaleX := frameW / surface.Width
	scaleY := frameH / surface.Height

	for _, op := range surface.Ops {
		switch o := op.(type) {
		case models.FillRect:
			writer.DrawRect(originX+o.X*scaleX, originY+o.Y*scaleY, o.W*scaleX, o.H*scaleY, o.Color)
		case models.FillCircle:
			writer.DrawCircle(originX+o.CX*scaleX, originY+o.CY*scaleY, o.R*scaleX, o.Color)
		case models.DrawImage:
			if err := writer.DrawImage(o.Name, o.Bytes, o.Format,
				originX+o.X*scaleX, originY+o.Y*scaleY, o.W*scaleX, o.H*scaleY, o.CircleClip); err != nil {
				return err
			}
		case models.DrawText:
			writer.DrawText(o.Text, originX+o.X*scaleX, originY+o.Y*scaleY,
				o.W*scaleX, o.Size*scaleY, o.Color, o.Align, o.Bold)
		default:
			return fmt.Errorf("unknown draw op %T", op)
		}
	}
	return nil
}

// DocumentFilename derives the deterministic output name. One card is
// named after its handle; a batch is named by its size.
func DocumentFilename(cards []*models.Card) string {
	if len(cards) == 1 {
		return cards[0].Username + "-card.pdf"
	}
	return fmt.Sprintf("cards-%d.pdf", len(cards))
}
