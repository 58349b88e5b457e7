// Package ebiten runs the debugui windows on top of an Ebitengine game.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
)

// ImguiBackend wraps the Ebitengine Dear ImGui backend.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the backend and its ImGui context. The ImGui ini
// file is disabled.
func NewImguiBackend(title string, width, height int) *ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &ImguiBackend{EbitenBackend: backend}
}

// Overlay wraps an ebiten.Game so that its Update runs inside an ImGui frame
// and the ImGui draw list is composited over its Draw.
type Overlay struct {
	Game    ebiten.Game
	Backend *ImguiBackend
}

func (o *Overlay) Update() error {
	o.Backend.BeginFrame()
	defer o.Backend.EndFrame()
	return o.Game.Update()
}

func (o *Overlay) Draw(screen *ebiten.Image) {
	o.Game.Draw(screen)
	o.Backend.Draw(screen)
}

func (o *Overlay) Layout(outsideWidth, outsideHeight int) (int, int) {
	o.Backend.Layout(outsideWidth, outsideHeight)
	return o.Game.Layout(outsideWidth, outsideHeight)
}
