package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s4yuba/x-card-generator/internal/carderr"
)

// The default config tiles A4 with a 190x277 mm content area: two
// 85.6 mm columns and four 54 mm rows, eight cards per page.

func TestLayout_ZeroCards(t *testing.T) {
	plan, err := Layout(0, DefaultTileConfig())
	require.NoError(t, err)
	assert.Zero(t, plan.PageCount)
	assert.Empty(t, plan.Placements)
}

func TestLayout_FitPagination(t *testing.T) {
	tests := []struct {
		name      string
		cards     int
		wantPages int
	}{
		{name: "single card", cards: 1, wantPages: 1},
		{name: "exactly one full page", cards: 8, wantPages: 1},
		{name: "one overflow card opens a page", cards: 9, wantPages: 2},
		{name: "three full pages", cards: 24, wantPages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Layout(tt.cards, DefaultTileConfig())
			require.NoError(t, err)
			assert.Equal(t, tt.wantPages, plan.PageCount)
			assert.Len(t, plan.Placements, tt.cards)
		})
	}
}

func TestLayout_Positions(t *testing.T) {
	plan, err := Layout(3, DefaultTileConfig())
	require.NoError(t, err)

	first := plan.Placements[0]
	assert.InDelta(t, 10.0, first.X, 1e-9)
	assert.InDelta(t, 10.0, first.Y, 1e-9)

	// Second card advances one column: margin + card + spacing.
	second := plan.Placements[1]
	assert.InDelta(t, 100.6, second.X, 1e-9)
	assert.InDelta(t, 10.0, second.Y, 1e-9)

	// Third card wraps to the next row.
	third := plan.Placements[2]
	assert.InDelta(t, 10.0, third.X, 1e-9)
	assert.InDelta(t, 69.0, third.Y, 1e-9)
}

func TestLayout_Deterministic(t *testing.T) {
	cfg := DefaultTileConfig()
	cfg.Duplex = DuplexSequential

	a, err := Layout(11, cfg)
	require.NoError(t, err)
	b, err := Layout(11, cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLayout_ExplicitColumnsClamped(t *testing.T) {
	cfg := DefaultTileConfig()
	cfg.Columns = 5 // only two fit

	plan, err := Layout(2, cfg)
	require.NoError(t, err)

	// Leftover width is rebalanced: (190 - 2*85.6) / 1 = 18.8 mm gap.
	assert.InDelta(t, 10.0, plan.Placements[0].X, 1e-9)
	assert.InDelta(t, 10.0+85.6+18.8, plan.Placements[1].X, 1e-9)
}

func TestLayout_SingleColumn(t *testing.T) {
	cfg := DefaultTileConfig()
	cfg.Columns = 1

	plan, err := Layout(2, cfg)
	require.NoError(t, err)

	// One column: second card sits directly below the first.
	assert.InDelta(t, plan.Placements[0].X, plan.Placements[1].X, 1e-9)
	assert.Greater(t, plan.Placements[1].Y, plan.Placements[0].Y)
}

func TestLayout_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TileConfig)
	}{
		{name: "card wider than page", mutate: func(c *TileConfig) { c.CardWidth = 300 }},
		{name: "card taller than page", mutate: func(c *TileConfig) { c.CardHeight = 300 }},
		{name: "zero card width", mutate: func(c *TileConfig) { c.CardWidth = 0 }},
		{name: "margin eats the page", mutate: func(c *TileConfig) { c.Margin = 150 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTileConfig()
			tt.mutate(&cfg)

			_, err := Layout(1, cfg)
			require.Error(t, err)
			assert.Equal(t, carderr.CodeInvalidLayoutConfig, carderr.CodeOf(err))
		})
	}
}

func TestLayout_SequentialDuplex(t *testing.T) {
	cfg := DefaultTileConfig()
	cfg.Duplex = DuplexSequential

	plan, err := Layout(8, cfg)
	require.NoError(t, err)

	// Front page plus its back page.
	assert.Equal(t, 2, plan.PageCount)
	require.Len(t, plan.Placements, 16)

	front, back := plan.Placements[0], plan.Placements[8]
	assert.False(t, front.Back)
	assert.True(t, back.Back)
	assert.Equal(t, front.CardIndex, back.CardIndex)
	assert.Equal(t, 1, back.PageIndex)

	// Long-edge flip: mirrored about the page's vertical center,
	// 210 - 10 - 85.6, same row.
	assert.InDelta(t, 114.4, back.X, 1e-9)
	assert.InDelta(t, front.Y, back.Y, 1e-9)

	// Second column front lands left of center on the back page.
	assert.InDelta(t, 23.8, plan.Placements[9].X, 1e-9)
}

func TestLayout_SequentialPartialLastPage(t *testing.T) {
	cfg := DefaultTileConfig()
	cfg.Duplex = DuplexSequential

	plan, err := Layout(9, cfg)
	require.NoError(t, err)

	// Two front pages, two back pages; backs come after all fronts.
	assert.Equal(t, 4, plan.PageCount)
	assert.Equal(t, 2, plan.Placements[9].PageIndex)
	assert.True(t, plan.Placements[9].Back)
}

func TestLayout_SplitDuplex(t *testing.T) {
	cfg := DefaultTileConfig()
	cfg.Duplex = DuplexSplit

	// Half of the content area holds one 85.6 mm column of four rows.
	plan, err := Layout(4, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, plan.PageCount)
	require.Len(t, plan.Placements, 8)

	front, back := plan.Placements[0], plan.Placements[1]
	assert.False(t, front.Back)
	assert.True(t, back.Back)
	assert.Equal(t, front.PageIndex, back.PageIndex)
	assert.Equal(t, front.CardIndex, back.CardIndex)

	// Back sits in the right half: margin + half width + spacing.
	assert.InDelta(t, 10.0+92.5+5.0, back.X, 1e-9)
	assert.InDelta(t, front.Y, back.Y, 1e-9)
}

func TestPageSizeDimensions(t *testing.T) {
	w, h := PageA4.Dimensions()
	assert.Equal(t, 210.0, w)
	assert.Equal(t, 297.0, h)

	w, h = PageLetter.Dimensions()
	assert.Equal(t, 215.9, w)
	assert.Equal(t, 279.4, h)
}
