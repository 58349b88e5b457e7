// Package breakout implements the Breakout game on top of the core world:
// arena setup, paddle and ball controls, and the win, lose and restart rules.
//
// The world uses pixel units with the origin at the bottom left of the
// arena and y pointing up.
package breakout

//go:generate go run ../../cmd/ecsgen -dir . -out components_gen.go
