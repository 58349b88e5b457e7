package ecs

// iComponentStorage is an interface for a type-erased component storage.
// Slots are addressed by archetype row.
type iComponentStorage interface {
	Set(index int, item any) bool
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Move(from, to int)
	Truncate(length int)
}
