// Command ecsgen writes a RegisterComponents function for every struct in a
// package whose doc comment carries the //ecs:component directive.
//
//	//go:generate go run ../cmd/ecsgen -dir . -out components_gen.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/tools/go/packages"
)

func main() {
	dir := flag.String("dir", ".", "The package directory to scan.")
	out := flag.String("out", "components_gen.go", "The file to write, relative to -dir.")
	funcName := flag.String("func", "RegisterComponents", "The name of the generated function.")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("ecsgen: ")

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:  *dir,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		log.Fatalf("load %s: %v", *dir, err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		os.Exit(1)
	}
	if len(pkgs) != 1 {
		log.Fatalf("expected one package in %s, found %d", *dir, len(pkgs))
	}

	pkg := pkgs[0]
	components := Scan(pkg.Syntax)
	if len(components) == 0 {
		log.Printf("no components found in %s", pkg.PkgPath)
		return
	}

	path := filepath.Join(*dir, *out)
	src, err := Generate(path, Target{
		Package:    pkg.Name,
		PkgPath:    pkg.PkgPath,
		Func:       *funcName,
		Components: components,
	})
	if err != nil {
		log.Fatalf("generate %s: %v", path, err)
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	fmt.Printf("%s: %d components\n", path, len(components))
}
