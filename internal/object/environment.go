package object

import (
	"log/slog"
)

// Environment is the interpreter's binding state: a global map, a read-only
// table of builtins behind it, and a stack of frames pushed by blocks and
// calls (last = innermost). Frames are searched innermost first, so a call
// still sees the frames of its caller.
type Environment struct {
	globals  map[string]Object
	builtins map[string]Object
	frames   []map[string]Object
}

func NewEnvironment(builtins map[string]Object) *Environment {
	if builtins == nil {
		builtins = map[string]Object{}
	}
	return &Environment{
		globals:  make(map[string]Object),
		builtins: builtins,
	}
}

// Get resolves a name through the frames, then globals, then builtins.
func (e *Environment) Get(name string) (Object, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if val, ok := e.frames[i][name]; ok {
			return val, true
		}
	}
	if val, ok := e.globals[name]; ok {
		return val, true
	}
	val, ok := e.builtins[name]
	return val, ok
}

// Set updates the innermost frame that already binds name, which may be an
// outer frame. Anything else lands in globals.
func (e *Environment) Set(name string, val Object) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if _, ok := e.frames[i][name]; ok {
			e.frames[i][name] = val
			return
		}
	}
	e.globals[name] = val
}

// Define always binds in the innermost frame, or globals at top level.
func (e *Environment) Define(name string, val Object) {
	if n := len(e.frames); n > 0 {
		e.frames[n-1][name] = val
		return
	}
	slog.Debug("binding global",
		slog.String("name", name),
		slog.Any("type", val.Type()))
	e.globals[name] = val
}

// Push enters a new frame seeded with a copy of bindings.
func (e *Environment) Push(bindings map[string]Object) {
	frame := make(map[string]Object, len(bindings))
	for k, v := range bindings {
		frame[k] = v
	}
	e.frames = append(e.frames, frame)
}

// Pop removes and returns the innermost frame.
func (e *Environment) Pop() map[string]Object {
	n := len(e.frames)
	if n == 0 {
		return nil
	}
	frame := e.frames[n-1]
	e.frames[n-1] = nil
	e.frames = e.frames[:n-1]
	return frame
}

// Depth is the number of active frames.
func (e *Environment) Depth() int {
	return len(e.frames)
}

// Unwind drops frames until only depth remain; used to recover after an
// error aborted evaluation part way through.
func (e *Environment) Unwind(depth int) {
	for len(e.frames) > depth {
		e.Pop()
	}
}

// Snapshot flattens globals and then every frame, inner frames overriding
// outer ones, into a new map. Builtins are not copied; they stay reachable
// through Get.
func (e *Environment) Snapshot() map[string]Object {
	size := len(e.globals)
	for _, f := range e.frames {
		size += len(f)
	}
	snapshot := make(map[string]Object, size)
	for k, v := range e.globals {
		snapshot[k] = v
	}
	for _, f := range e.frames {
		for k, v := range f {
			snapshot[k] = v
		}
	}
	return snapshot
}

// Globals returns the names bound at top level.
func (e *Environment) Globals() []string {
	names := make([]string, 0, len(e.globals))
	for k := range e.globals {
		names = append(names, k)
	}
	return names
}
