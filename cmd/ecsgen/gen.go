package main

import (
	"bytes"
	"go/ast"
	"slices"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

const (
	directive = "//ecs:component"
	ecsPath   = "github.com/plus3/brickworks/ecs"
)

// Target describes the file to generate.
type Target struct {
	Package    string
	PkgPath    string
	Func       string
	Components []string
}

// Qualifier is the prefix the generated code puts before ecs identifiers.
func (t Target) Qualifier() string {
	if t.PkgPath == ecsPath {
		return ""
	}
	return "ecs."
}

// Scan returns the sorted names of the struct types marked as components.
func Scan(files []*ast.File) []string {
	var names []string
	for _, file := range files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || ts.TypeParams != nil {
					continue
				}
				if _, ok := ts.Type.(*ast.StructType); !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				if hasDirective(doc) {
					names = append(names, ts.Name.Name)
				}
			}
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == directive {
			return true
		}
	}
	return false
}

var fileTemplate = template.Must(template.New("components").Parse(`// Code generated by ecsgen. DO NOT EDIT.

package {{.Package}}
{{if .Qualifier}}
import "` + ecsPath + `"
{{end}}
// {{.Func}} registers every component type declared in this package.
func {{.Func}}(registry *{{.Qualifier}}ComponentRegistry) {
{{- range .Components}}
	{{$.Qualifier}}RegisterComponent[{{.}}](registry)
{{- end}}
}
`))

// Generate renders and formats the registration file for t. filename is
// only used to resolve imports.
func Generate(filename string, t Target) ([]byte, error) {
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, t); err != nil {
		return nil, err
	}
	return imports.Process(filename, buf.Bytes(), nil)
}
