// Package display draws the Breakout world with ebiten and reads the
// keyboard. It is kept apart from the gameplay package so the rules can be
// tested without a window.
package display

import (
	"fmt"
	"image/color"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/brickworks/core"
	"github.com/plus3/brickworks/ecs"
	"github.com/plus3/brickworks/internal/breakout"
	"github.com/plus3/brickworks/resources"
)

var backgroundColor = color.RGBA{18, 20, 32, 255}

// Item is one sprite as it will be drawn, in screen coordinates.
type Item struct {
	Shape breakout.SpriteShape
	// Min is the top-left corner on screen.
	Min     mgl32.Vec2
	Size    mgl32.Vec2
	Color   color.RGBA
	Texture string
	Layer   int
}

// Renderer snapshots sprites when a frame is presented and draws the latest
// snapshot when ebiten asks for it.
type Renderer struct {
	config   breakout.Config
	context  *core.GameContext
	textures *resources.TextureCache

	mu      sync.Mutex
	items   []Item
	frame   core.FrameResult
	missing map[string]bool

	sprites *ecs.View[struct {
		*breakout.Sprite
		*core.Transform
	}]
	world *core.World
}

// NewRenderer draws through textures. Sprites whose texture cannot be loaded
// are drawn as flat shapes.
func NewRenderer(config breakout.Config, gameContext *core.GameContext, textures *resources.TextureCache) *Renderer {
	return &Renderer{
		config:   config,
		context:  gameContext,
		textures: textures,
		missing:  make(map[string]bool),
	}
}

// Present implements core.Renderer.
func (r *Renderer) Present(world *core.World, frame core.FrameResult) error {
	if r.world != world {
		r.world = world
		r.sprites = ecs.NewView[struct {
			*breakout.Sprite
			*core.Transform
		}](world.Storage())
	}

	items := make([]Item, 0, len(r.items))
	for s := range r.sprites.Values() {
		items = append(items, r.project(s.Sprite, s.Transform))
	}
	slices.SortStableFunc(items, func(a, b Item) int { return a.Layer - b.Layer })

	r.mu.Lock()
	r.items = items
	r.frame = frame
	r.mu.Unlock()
	return nil
}

// project flips the world's y-up coordinates into screen space.
func (r *Renderer) project(sprite *breakout.Sprite, transform *core.Transform) Item {
	center := transform.Translation2D()
	size := mgl32.Vec2{sprite.HalfExtents.X() * transform.Scale.X(), sprite.HalfExtents.Y() * transform.Scale.Y()}.Mul(2)
	return Item{
		Shape:   sprite.Shape,
		Min:     mgl32.Vec2{center.X() - size.X()/2, r.config.Height - center.Y() - size.Y()/2},
		Size:    size,
		Color:   sprite.Color,
		Texture: sprite.Texture,
		Layer:   sprite.Layer,
	}
}

// Items returns a copy of the latest snapshot.
func (r *Renderer) Items() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items)
}

// Frame returns the frame result the latest snapshot was taken from.
func (r *Renderer) Frame() core.FrameResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

// Draw renders the latest snapshot and the round status.
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	if bg := r.texture("background.jpg", color.RGBA{255, 255, 255, 255}); bg != nil {
		r.drawImage(screen, bg, mgl32.Vec2{}, mgl32.Vec2{r.config.Width, r.config.Height})
	}

	for _, item := range r.Items() {
		if img := r.texture(item.Texture, item.Color); img != nil {
			r.drawImage(screen, img, item.Min, item.Size)
			continue
		}
		switch item.Shape {
		case breakout.SpriteCircle:
			radius := item.Size.X() / 2
			vector.DrawFilledCircle(screen, item.Min.X()+radius, item.Min.Y()+radius, radius, item.Color, true)
		default:
			vector.DrawFilledRect(screen, item.Min.X(), item.Min.Y(), item.Size.X(), item.Size.Y(), item.Color, false)
		}
	}

	ebitenutil.DebugPrint(screen, StatusLine(r.context.State()))
}

// StatusLine is the hint shown for a game state.
func StatusLine(state core.GameState) string {
	switch state {
	case core.StateMenu:
		return "Breakout: press Enter to start"
	case core.StateWin:
		return "Level cleared! Enter for the next level, Esc to quit"
	case core.StateLose:
		return "Ball lost. Enter to retry, Esc to quit"
	default:
		return fmt.Sprintf("Space launches, arrows move (%s)", state)
	}
}

func (r *Renderer) texture(path string, tint color.RGBA) *ebiten.Image {
	if path == "" || r.textures == nil {
		return nil
	}
	src := resources.TintedFile(path, tint)
	r.mu.Lock()
	missing := r.missing[path]
	r.mu.Unlock()
	if missing {
		return nil
	}

	img, err := r.textures.Load(src)
	if err != nil {
		r.mu.Lock()
		r.missing[path] = true
		r.mu.Unlock()
		return nil
	}
	return img
}

func (r *Renderer) drawImage(screen, img *ebiten.Image, min, size mgl32.Vec2) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(size.X())/float64(bounds.Dx()), float64(size.Y())/float64(bounds.Dy()))
	op.GeoM.Translate(float64(min.X()), float64(min.Y()))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
}

// Layout returns the logical screen size.
func (r *Renderer) Layout() (int, int) {
	return int(r.config.Width), int(r.config.Height)
}
