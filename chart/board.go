package chart

// Board holds the live blocks of a display and the palette they share.
// Switching the theme walks every block; blocks never observe the palette on
// their own.
type Board struct {
	blocks  []*Block
	palette Palette
}

func NewBoard(pal Palette) *Board {
	return &Board{palette: pal}
}

func (b *Board) Add(blocks ...*Block) {
	b.blocks = append(b.blocks, blocks...)
}

// Replace swaps the set of live blocks.
func (b *Board) Replace(blocks []*Block) {
	b.blocks = blocks
}

func (b *Board) Blocks() []*Block {
	return b.blocks
}

func (b *Board) Palette() Palette {
	return b.palette
}

// SwitchTheme toggles the palette and hands every live block to redraw along
// with the new palette. It returns the new palette.
func (b *Board) SwitchTheme(redraw func(*Block, Palette)) Palette {
	b.palette = b.palette.Toggle()
	if redraw != nil {
		for _, block := range b.blocks {
			redraw(block, b.palette)
		}
	}
	return b.palette
}

// Animate calls render until it stops requesting frames or maxFrames have
// been drawn, and returns the number of frames drawn. A non-positive
// maxFrames draws until render settles.
func Animate(render func() bool, maxFrames int) int {
	frames := 0
	for {
		frames++
		if !render() || (maxFrames > 0 && frames >= maxFrames) {
			return frames
		}
	}
}
