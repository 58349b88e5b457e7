// Package debugui draws Dear ImGui inspector windows over an ECS storage.
// Windows are components; WindowSystem renders them once per frame and
// ImguiSystem runs free-form ImguiItem callbacks.
//
// Both systems issue ImGui calls, so the frame they run in must sit between
// the backend's BeginFrame and EndFrame.
package debugui

//go:generate go run ../../cmd/ecsgen -dir . -out components_gen.go

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/brickworks/ecs"
)

// ImguiItem holds a render callback run once per frame.
//
//ecs:component
type ImguiItem struct {
	Render func()
}

// ImguiInputState mirrors whether ImGui is consuming input this frame.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem refreshes ImguiInputState and defers every ImguiItem callback
// until the phase's command flush, so callbacks may open their own views.
type ImguiSystem struct {
	ecs.BaseSystem
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

func (*ImguiSystem) Name() string { return "imgui" }

func (i *ImguiSystem) Start(frame *ecs.UpdateFrame) error {
	if !i.InputState.Exists() {
		frame.Storage.AddSingleton(ImguiInputState{})
	}
	return nil
}

func (i *ImguiSystem) LateUpdate(frame *ecs.UpdateFrame) error {
	io := imgui.CurrentIO()
	state := i.InputState.Get()
	state.WantCaptureMouse = io.WantCaptureMouse()
	state.WantCaptureKeyboard = io.WantCaptureKeyboard()

	for _, item := range i.Items.Iter() {
		if item.Render != nil {
			frame.Commands.Defer(item.Render)
		}
	}
	return nil
}

// KeyboardCaptured reports whether ImGui wants keyboard input. It is false
// until ImguiSystem has run once.
func KeyboardCaptured(storage *ecs.Storage) bool {
	var state *ImguiInputState
	return storage.ReadSingleton(&state) && state.WantCaptureKeyboard
}
