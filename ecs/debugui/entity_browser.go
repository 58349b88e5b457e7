package debugui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/brickworks/ecs"
)

// EntityInfo is one row of the entity browser.
type EntityInfo struct {
	ID             ecs.Entity
	ArchetypeID    uint32
	ComponentTypes []string
}

func NewEntityBrowser(perPage int) EntityBrowser {
	return EntityBrowser{perPage: max(perPage, 1), generation: -1}
}

// Selected returns the entity last clicked in the browser.
func (eb *EntityBrowser) Selected() ecs.Entity {
	return eb.selected
}

// CollectEntities snapshots every live entity, ordered by id.
func CollectEntities(storage *ecs.Storage) []EntityInfo {
	infos := make([]EntityInfo, 0, storage.Len())
	for _, archetype := range storage.GetArchetypes() {
		names := make([]string, len(archetype.Types()))
		for i, t := range archetype.Types() {
			names[i] = t.String()
		}
		for entity := range archetype.Iter() {
			infos = append(infos, EntityInfo{
				ID:             entity,
				ArchetypeID:    archetype.ID(),
				ComponentTypes: names,
			})
		}
	}
	slices.SortFunc(infos, func(a, b EntityInfo) int { return cmp.Compare(a.ID, b.ID) })
	return infos
}

// FilterEntities keeps the rows whose id, archetype or component names
// contain text, ignoring case.
func FilterEntities(entities []EntityInfo, text string) []EntityInfo {
	if text == "" {
		return entities
	}
	needle := strings.ToLower(text)
	var filtered []EntityInfo
	for _, e := range entities {
		haystack := strings.ToLower(fmt.Sprintf("%s %d 0x%x %s",
			e.ID, uint64(e.ID), e.ArchetypeID, strings.Join(e.ComponentTypes, " ")))
		if strings.Contains(haystack, needle) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func (eb *EntityBrowser) sort() {
	slices.SortStableFunc(eb.entities, func(a, b EntityInfo) int {
		var c int
		switch eb.sortColumn {
		case 1:
			c = cmp.Compare(a.ArchetypeID, b.ArchetypeID)
		case 2:
			c = cmp.Compare(strings.Join(a.ComponentTypes, ","), strings.Join(b.ComponentTypes, ","))
		default:
			c = cmp.Compare(a.ID, b.ID)
		}
		if eb.descending {
			return -c
		}
		return c
	})
}

// Render draws the window. The snapshot is refreshed whenever the entity
// count changes.
func (eb *EntityBrowser) Render(storage *ecs.Storage) {
	defer imgui.End()
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		return
	}

	refresh := imgui.Button("Refresh")
	if n := storage.Len(); refresh || n != eb.generation {
		eb.entities = CollectEntities(storage)
		eb.generation = n
		eb.sort()
	}
	imgui.SameLine()
	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)

	visible := FilterEntities(eb.entities, eb.filterText)
	pages := max((len(visible)+eb.perPage-1)/eb.perPage, 1)
	eb.currentPage = min(eb.currentPage, pages-1)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 3, tableFlags, imgui.NewVec2(0, 300), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Archetype")
		imgui.TableSetupColumn("Components")
		imgui.TableHeadersRow()

		if specs := imgui.TableGetSortSpecs(); specs.SpecsDirty() && specs.SpecsCount() > 0 {
			spec := specs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.descending = spec.SortDirection() == imgui.SortDirectionDescending
			eb.sort()
			specs.SetSpecsDirty(false)
		}

		start := eb.currentPage * eb.perPage
		for _, e := range visible[start:min(start+eb.perPage, len(visible))] {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			if imgui.SelectableBoolV(e.ID.String(), eb.selected == e.ID, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = e.ID
			}
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("0x%X", e.ArchetypeID))
			imgui.TableNextColumn()
			imgui.Text(strings.Join(e.ComponentTypes, ", "))
		}
		imgui.EndTable()
	}

	imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, pages, len(visible)))
	imgui.SameLine()
	if imgui.Button("Prev") && eb.currentPage > 0 {
		eb.currentPage--
	}
	imgui.SameLine()
	if imgui.Button("Next") && eb.currentPage < pages-1 {
		eb.currentPage++
	}
}
