package ecs

import "unsafe"

// eface mirrors the runtime layout of an empty interface value.
type eface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// dataPointer returns the data word of v. For pointer values this is the pointer itself,
// which lets views bind component pointers without going through reflect.
func dataPointer(v any) unsafe.Pointer {
	return (*eface)(unsafe.Pointer(&v)).data
}
