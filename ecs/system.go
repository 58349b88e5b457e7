package ecs

// System represents a behavior that operates on entities with specific components.
// User-defined systems implement this interface and can include Query and
// Singleton fields, which the Scheduler initializes on registration, as well
// as custom state that persists between frames.
//
// A phase that returns an error or panics is logged and skipped; the
// remaining systems still run.
type System interface {
	Name() string
	Start(frame *UpdateFrame) error
	EarlyUpdate(frame *UpdateFrame) error
	Update(frame *UpdateFrame) error
	LateUpdate(frame *UpdateFrame) error
}

// BaseSystem provides no-op phases. Embed it and override what is needed.
type BaseSystem struct{}

func (BaseSystem) Start(*UpdateFrame) error       { return nil }
func (BaseSystem) EarlyUpdate(*UpdateFrame) error { return nil }
func (BaseSystem) Update(*UpdateFrame) error      { return nil }
func (BaseSystem) LateUpdate(*UpdateFrame) error  { return nil }
