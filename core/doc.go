// Package core runs the entity world: it feeds ECS entities into the physics
// engine, advances the simulation on a fixed timestep, publishes collision
// records and drives the registered systems through their phases.
package core

//go:generate go run ../cmd/ecsgen -dir . -out components_gen.go
