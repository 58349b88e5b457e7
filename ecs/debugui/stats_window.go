package debugui

import "github.com/AllenDang/cimgui-go/imgui"

func NewStatsWindow(title string, source func() []Stat) StatsWindow {
	return StatsWindow{Title: title, Source: source}
}

func (sw *StatsWindow) Render() {
	defer imgui.End()
	if !imgui.BeginV(sw.Title, nil, imgui.WindowFlagsAlwaysAutoResize) {
		return
	}
	if sw.Source == nil {
		return
	}
	for _, stat := range sw.Source() {
		imgui.Text(stat.Label + ":")
		imgui.SameLine()
		imgui.Text(stat.Value)
	}
}
