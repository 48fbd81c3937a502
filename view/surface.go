package view

// Capabilities configures a rendering surface's export affordances. Every
// field defaults to disabled; a surface receiving a false capability must
// treat the corresponding action as a no-op.
type Capabilities struct {
	Print        bool
	Save         bool
	OpenExternal bool
}

// Restricted returns the capability set handed to every surface: printing,
// saving, and opening in an external context all disabled.
func Restricted() Capabilities { return Capabilities{} }

// Surface is the rendering-plugin contract: it displays the referenced
// bytes under the supplied capability restrictions. Implementations live in
// the host application; this library only guarantees what they are given.
type Surface interface {
	Render(ref *Reference, caps Capabilities) error
}

// SurfaceFunc adapts a function to the Surface interface.
type SurfaceFunc func(ref *Reference, caps Capabilities) error

// Render implements Surface.
func (f SurfaceFunc) Render(ref *Reference, caps Capabilities) error { return f(ref, caps) }
