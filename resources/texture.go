// Package resources caches textures shared between entities.
package resources

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"golang.org/x/sync/singleflight"
)

// ErrNoFileSystem is returned when a file texture is requested from a cache
// that was created without a file system.
var ErrNoFileSystem = errors.New("texture cache has no file system")

// TextureSource identifies a texture. Sources are comparable and used as
// cache keys.
type TextureSource struct {
	// Path of an image file. Empty for solid colors.
	Path string
	// Color fills a solid texture, or tints a file texture when Tinted is set.
	Color  color.RGBA
	Tinted bool
}

// File is an image file drawn as is.
func File(path string) TextureSource {
	return TextureSource{Path: path}
}

// TintedFile is an image file multiplied by tint.
func TintedFile(path string, tint color.RGBA) TextureSource {
	return TextureSource{Path: path, Color: tint, Tinted: true}
}

// Solid is a single pixel of c, meant to be stretched.
func Solid(c color.RGBA) TextureSource {
	return TextureSource{Color: c}
}

func (s TextureSource) String() string {
	switch {
	case s.Path == "":
		return fmt.Sprintf("solid(%d,%d,%d,%d)", s.Color.R, s.Color.G, s.Color.B, s.Color.A)
	case s.Tinted:
		return fmt.Sprintf("%s#%d,%d,%d,%d", s.Path, s.Color.R, s.Color.G, s.Color.B, s.Color.A)
	default:
		return s.Path
	}
}

// base is the untinted source a tinted source is derived from.
func (s TextureSource) base() TextureSource {
	return TextureSource{Path: s.Path}
}

// Loader produces the image for a source that is not cached yet.
type Loader func(src TextureSource) (*ebiten.Image, error)

// TextureCache loads every source once. It is safe for concurrent use;
// concurrent requests for the same missing source share one load.
type TextureCache struct {
	mu       sync.Mutex
	textures map[TextureSource]*ebiten.Image
	loads    singleflight.Group
	load     Loader
}

// NewTextureCache reads image files from fsys. fsys may be nil when only
// solid textures are used.
func NewTextureCache(fsys fs.FS) *TextureCache {
	c := &TextureCache{textures: make(map[TextureSource]*ebiten.Image)}
	c.load = func(src TextureSource) (*ebiten.Image, error) {
		return c.decode(fsys, src)
	}
	return c
}

// NewTextureCacheWithLoader uses load for every miss.
func NewTextureCacheWithLoader(load Loader) *TextureCache {
	return &TextureCache{
		textures: make(map[TextureSource]*ebiten.Image),
		load:     load,
	}
}

// Load returns the texture for src, loading it on first use.
func (c *TextureCache) Load(src TextureSource) (*ebiten.Image, error) {
	if img, ok := c.lookup(src); ok {
		return img, nil
	}

	v, err, _ := c.loads.Do(src.String(), func() (any, error) {
		if img, ok := c.lookup(src); ok {
			return img, nil
		}
		img, err := c.load(src)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.textures[src] = img
		c.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load texture %s: %w", src, err)
	}
	return v.(*ebiten.Image), nil
}

func (c *TextureCache) lookup(src TextureSource) (*ebiten.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.textures[src]
	return img, ok
}

// Len returns the number of cached textures.
func (c *TextureCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.textures)
}

// Clear drops every cached texture.
func (c *TextureCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.textures)
}

func (c *TextureCache) decode(fsys fs.FS, src TextureSource) (*ebiten.Image, error) {
	if src.Path == "" {
		img := ebiten.NewImage(1, 1)
		img.Fill(src.Color)
		return img, nil
	}
	if src.Tinted {
		base, err := c.Load(src.base())
		if err != nil {
			return nil, err
		}
		return tint(base, src.Color), nil
	}
	if fsys == nil {
		return nil, ErrNoFileSystem
	}
	img, _, err := ebitenutil.NewImageFromFileSystem(fsys, src.Path)
	return img, err
}

func tint(base *ebiten.Image, c color.RGBA) *ebiten.Image {
	bounds := base.Bounds()
	img := ebiten.NewImage(bounds.Dx(), bounds.Dy())
	op := &ebiten.DrawImageOptions{}
	op.ColorScale.ScaleWithColor(c)
	img.DrawImage(base, op)
	return img
}
