// Package level parses Breakout level definitions.
//
// A level is a byte stream: the grid width, the grid height, then one byte
// per cell in row-major order starting from the top row.
package level

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"iter"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrMissingWidth  = errors.New("missing width in level definition")
	ErrMissingHeight = errors.New("missing height in level definition")
	ErrGridSize      = errors.New("level grid size mismatch")
)

// BrickError reports a cell byte that is not a known brick.
type BrickError struct {
	Offset int
	Value  byte
}

func (e *BrickError) Error() string {
	return fmt.Sprintf("invalid brick type %d at offset %d", e.Value, e.Offset)
}

// Brick is the content of one grid cell.
type Brick uint8

const (
	Empty Brick = iota
	Solid
	Blue
	Green
	Yellow
	Orange
	White
)

func (b Brick) String() string {
	switch b {
	case Empty:
		return "empty"
	case Solid:
		return "solid"
	case Blue:
		return "blue"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Orange:
		return "orange"
	case White:
		return "white"
	default:
		return fmt.Sprintf("brick(%d)", uint8(b))
	}
}

// Visible reports whether the cell holds a brick at all.
func (b Brick) Visible() bool {
	return b != Empty
}

// Breakable reports whether the ball destroys the brick on contact.
func (b Brick) Breakable() bool {
	return b != Empty && b != Solid
}

// Color is the tint a brick is drawn with.
func (b Brick) Color() color.RGBA {
	switch b {
	case Solid:
		return color.RGBA{204, 204, 178, 255}
	case Blue:
		return color.RGBA{51, 153, 255, 255}
	case Green:
		return color.RGBA{0, 178, 0, 255}
	case Yellow:
		return color.RGBA{204, 204, 102, 255}
	case Orange:
		return color.RGBA{255, 127, 0, 255}
	case White:
		return color.RGBA{255, 255, 255, 255}
	default:
		return color.RGBA{}
	}
}

func parseBrick(offset int, value byte) (Brick, error) {
	if value > byte(White) {
		return Empty, &BrickError{Offset: offset, Value: value}
	}
	return Brick(value), nil
}

// Level is a parsed brick grid.
type Level struct {
	Width  int
	Height int
	// Bricks holds Height rows of Width cells, top row first.
	Bricks [][]Brick
}

// Parse decodes a level definition.
func Parse(data []byte) (*Level, error) {
	if len(data) < 1 {
		return nil, ErrMissingWidth
	}
	if len(data) < 2 {
		return nil, ErrMissingHeight
	}

	width, height := int(data[0]), int(data[1])
	cells := data[2:]
	if len(cells) != width*height {
		return nil, fmt.Errorf("%w: %dx%d grid needs %d cells, got %d", ErrGridSize, width, height, width*height, len(cells))
	}

	l := &Level{Width: width, Height: height, Bricks: make([][]Brick, height)}
	for y := range height {
		row := make([]Brick, width)
		for x := range width {
			offset := 2 + y*width + x
			brick, err := parseBrick(offset, data[offset])
			if err != nil {
				return nil, err
			}
			row[x] = brick
		}
		l.Bricks[y] = row
	}
	return l, nil
}

// Read decodes a level definition from r.
func Read(r io.Reader) (*Level, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

// At returns the brick at column x of row y, or Empty outside the grid.
func (l *Level) At(x, y int) Brick {
	if y < 0 || y >= len(l.Bricks) || x < 0 || x >= len(l.Bricks[y]) {
		return Empty
	}
	return l.Bricks[y][x]
}

// Breakable counts the bricks that have to be destroyed to clear the level.
func (l *Level) Breakable() int {
	n := 0
	for _, row := range l.Bricks {
		for _, b := range row {
			if b.Breakable() {
				n++
			}
		}
	}
	return n
}

// Bytes encodes the level back into its definition format.
func (l *Level) Bytes() []byte {
	out := make([]byte, 0, 2+l.Width*l.Height)
	out = append(out, byte(l.Width), byte(l.Height))
	for _, row := range l.Bricks {
		for _, b := range row {
			out = append(out, byte(b))
		}
	}
	return out
}

// Area is the world-space rectangle a level is laid out in, y pointing up.
type Area struct {
	Left   float32
	Top    float32
	Width  float32
	Height float32
}

// Cell is one visible brick placed in an Area.
type Cell struct {
	X, Y        int
	Brick       Brick
	Center      mgl32.Vec2
	HalfExtents mgl32.Vec2
}

// Layout yields the visible bricks with their world placement. Every cell
// gets an equal share of the area.
func (l *Level) Layout(area Area) iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		if l.Width == 0 || l.Height == 0 {
			return
		}
		unitW := area.Width / float32(l.Width)
		unitH := area.Height / float32(l.Height)
		half := mgl32.Vec2{unitW / 2, unitH / 2}

		for y, row := range l.Bricks {
			for x, b := range row {
				if !b.Visible() {
					continue
				}
				cell := Cell{
					X:     x,
					Y:     y,
					Brick: b,
					Center: mgl32.Vec2{
						area.Left + unitW*float32(x) + unitW/2,
						area.Top - unitH*float32(y) - unitH/2,
					},
					HalfExtents: half,
				}
				if !yield(cell) {
					return
				}
			}
		}
	}
}
