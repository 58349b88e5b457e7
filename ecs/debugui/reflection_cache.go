package debugui

import (
	"reflect"
	"sync"
)

// FieldInfo describes an exported struct field.
type FieldInfo struct {
	Name  string
	Index int
	Type  reflect.Type
}

var fieldCache sync.Map // reflect.Type -> []FieldInfo

// Fields returns the exported fields of a struct type, caching the result.
// Non-struct types have none.
func Fields(t reflect.Type) []FieldInfo {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]FieldInfo)
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			fields = append(fields, FieldInfo{Name: f.Name, Index: i, Type: f.Type})
		}
	}

	actual, _ := fieldCache.LoadOrStore(t, fields)
	return actual.([]FieldInfo)
}
