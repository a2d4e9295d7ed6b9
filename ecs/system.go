package ecs

// System is one update function of the schedule. Systems are usually pointers to
// structs whose Query and Singleton fields declare what they read and write; the
// Schedule binds those fields at build time and uses the declarations to decide which
// systems may run concurrently. Other struct fields are private state that persists
// between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a function to System. It declares no access, so the schedule runs
// it exclusively; use NewSystemFunc to let it share a batch.
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}

// NewSystemFunc adapts fn to a System whose access is recorded by declare.
//
//	ecs.NewSystemFunc(integrate, func(a *ecs.Access) {
//		ecs.Writes[Position](a)
//		ecs.Reads[Velocity](a)
//	})
func NewSystemFunc(fn func(frame *UpdateFrame), declare func(a *Access)) System {
	return &declaredFunc{fn: fn, declare: declare}
}

type declaredFunc struct {
	fn      func(frame *UpdateFrame)
	declare func(a *Access)
}

func (f *declaredFunc) Execute(frame *UpdateFrame) {
	f.fn(frame)
}

func (f *declaredFunc) DeclareAccess(a *Access) {
	if f.declare != nil {
		f.declare(a)
	}
}
