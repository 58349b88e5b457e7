package physics

import "iter"

// arena stores values in reusable slots addressed by generational handles.
// The low 32 bits of a handle are the slot, the high 32 bits the generation.
// Generations start at 1 so the zero handle is never valid.
type arena[T any] struct {
	slots []arenaSlot[T]
	free  []uint32
	live  int
}

type arenaSlot[T any] struct {
	generation uint32
	occupied   bool
	value      T
}

func (a *arena[T]) insert(value T) uint64 {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, arenaSlot[T]{generation: 1})
	}

	slot := &a.slots[index]
	slot.occupied = true
	slot.value = value
	a.live++
	return uint64(slot.generation)<<32 | uint64(index)
}

func (a *arena[T]) get(handle uint64) (*T, bool) {
	index := uint32(handle)
	if int(index) >= len(a.slots) {
		return nil, false
	}
	slot := &a.slots[index]
	if !slot.occupied || slot.generation != uint32(handle>>32) {
		return nil, false
	}
	return &slot.value, true
}

func (a *arena[T]) remove(handle uint64) (T, bool) {
	var zero T
	if _, ok := a.get(handle); !ok {
		return zero, false
	}
	slot := &a.slots[uint32(handle)]
	value := slot.value
	slot.value = zero
	slot.occupied = false
	slot.generation++
	if slot.generation == 0 {
		slot.generation = 1
	}
	a.free = append(a.free, uint32(handle))
	a.live--
	return value, true
}

func (a *arena[T]) len() int {
	return a.live
}

// all yields occupied slots in slot order
func (a *arena[T]) all() iter.Seq2[uint64, *T] {
	return func(yield func(uint64, *T) bool) {
		for index := range a.slots {
			slot := &a.slots[index]
			if !slot.occupied {
				continue
			}
			if !yield(uint64(slot.generation)<<32|uint64(index), &slot.value) {
				return
			}
		}
	}
}
