package debugui

import (
	"fmt"
	"math"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/brickworks/ecs"
)

func NewComponentInspector() ComponentInspector {
	return ComponentInspector{}
}

// Render draws the components of entity. Numeric, bool and string fields
// are editable in place.
func (ci *ComponentInspector) Render(storage *ecs.Storage, entity ecs.Entity) {
	defer imgui.End()
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		return
	}

	ci.entity = entity
	if entity == 0 {
		imgui.Text("No entity selected")
		return
	}
	archetype := storage.ArchetypeOf(entity)
	if archetype == nil {
		imgui.Text(fmt.Sprintf("Entity %s has been despawned", entity))
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %s", entity))
	imgui.Text(fmt.Sprintf("Archetype: 0x%X", archetype.ID()))
	imgui.Separator()

	for _, t := range archetype.Types() {
		component := storage.GetComponent(entity, t)
		if component == nil {
			continue
		}
		if imgui.TreeNodeStr(t.String()) {
			renderValue(reflect.ValueOf(component).Elem())
			imgui.TreePop()
		}
	}
}

func renderValue(v reflect.Value) {
	for _, f := range Fields(v.Type()) {
		renderField(f.Name, v.Field(f.Index))
	}
}

func renderField(name string, v reflect.Value) {
	id := "##" + name
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := int32(Number(v))
		label(name)
		if imgui.InputInt(id, &n) {
			AssignNumber(v, float64(n))
		}

	case reflect.Float32, reflect.Float64:
		f := float32(v.Float())
		label(name)
		if imgui.InputFloat(id, &f) {
			AssignNumber(v, float64(f))
		}

	case reflect.Bool:
		b := v.Bool()
		if imgui.Checkbox(name, &b) && v.CanSet() {
			v.SetBool(b)
		}

	case reflect.String:
		s := v.String()
		label(name)
		if imgui.InputTextWithHint(id, "", &s, imgui.InputTextFlagsNone, nil) && v.CanSet() {
			v.SetString(s)
		}

	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Float32 {
			imgui.Text(name + ":")
			for i := range v.Len() {
				f := float32(v.Index(i).Float())
				imgui.SameLine()
				imgui.SetNextItemWidth(70)
				if imgui.InputFloat(fmt.Sprintf("%s%d", id, i), &f) {
					AssignNumber(v.Index(i), float64(f))
				}
			}
			return
		}
		imgui.Text(fmt.Sprintf("%s: %v", name, v.Interface()))

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			renderValue(v)
			imgui.TreePop()
		}

	case reflect.Slice, reflect.Map:
		imgui.Text(fmt.Sprintf("%s: %d items", name, v.Len()))

	case reflect.Pointer, reflect.Interface, reflect.Func:
		if v.IsNil() {
			imgui.Text(name + ": nil")
			return
		}
		imgui.Text(fmt.Sprintf("%s: %s", name, v.Type()))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, v.Interface()))
	}
}

func label(name string) {
	imgui.Text(name + ":")
	imgui.SameLine()
	imgui.SetNextItemWidth(150)
}

// Number reads any integer or float value as a float64.
func Number(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	case v.CanFloat():
		return v.Float()
	}
	return 0
}

// AssignNumber stores x into a settable numeric value, clamping it to the
// value's range. It reports false for other kinds.
func AssignNumber(v reflect.Value, x float64) bool {
	if !v.CanSet() {
		return false
	}
	switch {
	case v.CanInt():
		lim := math.Ldexp(1, v.Type().Bits()-1)
		v.SetInt(int64(math.Max(-lim, math.Min(lim-1, math.Trunc(x)))))
	case v.CanUint():
		lim := math.Ldexp(1, v.Type().Bits())
		v.SetUint(uint64(math.Max(0, math.Min(lim-1, math.Trunc(x)))))
	case v.CanFloat():
		v.SetFloat(x)
	default:
		return false
	}
	return true
}
