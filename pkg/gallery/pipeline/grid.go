package pipeline

import (
	"context"
	"image"

	"github.com/NethermindEth/genaiterest/pkg/gallery/style"
)

// Cell is one rendered image and its caption.
type Cell struct {
	Slot     int
	Column   int
	Caption  string
	Category style.Category
	Image    image.Image
}

type Renderer interface {
	Render(ctx context.Context, cell Cell) error
}

type RendererFunc func(ctx context.Context, cell Cell) error

func (f RendererFunc) Render(ctx context.Context, cell Cell) error {
	return f(ctx, cell)
}

// Grid hands out slots in completion order, filling columns round-robin.
// It is owned by a single goroutine.
type Grid struct {
	columns int
	next    int
}

func NewGrid(columns int) *Grid {
	if columns <= 0 {
		columns = DefaultColumns
	}
	return &Grid{columns: columns}
}

// Next returns the cell for the next free slot without claiming it.
func (g *Grid) Next(caption string, category style.Category, img image.Image) Cell {
	slot := g.next
	return Cell{
		Slot:     slot,
		Column:   slot % g.columns,
		Caption:  caption,
		Category: category,
		Image:    img,
	}
}

// Commit claims the slot of a cell returned by Next once it is rendered.
func (g *Grid) Commit(cell Cell) {
	if cell.Slot == g.next {
		g.next++
	}
}

func (g *Grid) Columns() int {
	return g.columns
}

func (g *Grid) Len() int {
	return g.next
}
