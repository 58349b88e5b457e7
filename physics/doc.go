// Package physics wraps a 2D rigid-body solver behind generational handles
// owned by ECS entities, and translates the solver's pairwise contact
// callbacks into per-entity collision records.
package physics

//go:generate go run ../cmd/ecsgen -dir . -out components_gen.go
