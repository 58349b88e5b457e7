package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `package sample

// Position is a component.
//
//ecs:component
type Position struct{ X, Y float32 }

type (
	// Velocity is grouped with another type.
	//
	//ecs:component
	Velocity struct{ X, Y float32 }

	Unmarked struct{}
)

//ecs:component
type Alias = Position

//ecs:component
type Generic[T any] struct{ Value T }

//ecs:component
type Health struct{ Points int }
`

func TestScan(t *testing.T) {
	file, err := parser.ParseFile(token.NewFileSet(), "sample.go", source, parser.ParseComments)
	require.NoError(t, err)

	assert.Equal(t, []string{"Health", "Position", "Velocity"}, Scan([]*ast.File{file}))
}

func TestGenerate(t *testing.T) {
	src, err := Generate("components_gen.go", Target{
		Package:    "sample",
		PkgPath:    "example.com/sample",
		Func:       "RegisterComponents",
		Components: []string{"Health", "Position"},
	})
	require.NoError(t, err)

	expected := `// Code generated by ecsgen. DO NOT EDIT.

package sample

import "github.com/plus3/brickworks/ecs"

// RegisterComponents registers every component type declared in this package.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Position](registry)
}
`
	assert.Equal(t, expected, string(src))
}

func TestGenerateInsideECS(t *testing.T) {
	src, err := Generate("components_gen.go", Target{
		Package:    "ecs",
		PkgPath:    ecsPath,
		Func:       "registerBuiltins",
		Components: []string{"Name"},
	})
	require.NoError(t, err)

	assert.NotContains(t, string(src), "import")
	assert.Contains(t, string(src), "func registerBuiltins(registry *ComponentRegistry) {\n\tRegisterComponent[Name](registry)\n}")
}
