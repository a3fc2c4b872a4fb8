// Environment implements the environment tree of spec §3.4: each frame
// holds three maps (simple values, closures, tuples) and a parent pointer.
// Frames are created only by GAMMA application and are never mutated after
// their initial population, grounded in the reference implementation's Env
// class (original_source/CSEMachine.h).
package machine

import "github.com/cwbudde/go-rpal/internal/flatten"

// Environment is one frame in the environment tree rooted at E0.
type Environment struct {
	Index    int
	Parent   *Environment
	values   map[string]flatten.Node
	closures map[string]flatten.Node
	tuples   map[string]flatten.Node
}

// newEnvironment allocates an empty frame with the given parent (nil for E0).
func newEnvironment(index int, parent *Environment) *Environment {
	return &Environment{
		Index:    index,
		Parent:   parent,
		values:   map[string]flatten.Node{},
		closures: map[string]flatten.Node{},
		tuples:   map[string]flatten.Node{},
	}
}

// bind places name into the map matching v's kind. A Lambda or Eeta goes to
// the closure map, a List to the tuple map, everything else to the simple
// value map.
func (e *Environment) bind(name string, v flatten.Node) {
	switch v.(type) {
	case flatten.Lambda, flatten.Eeta:
		e.closures[name] = v
	case flatten.List:
		e.tuples[name] = v
	default:
		e.values[name] = v
	}
}

// lookup searches this frame's three maps, then the parent chain, per the
// per-level hierarchical rule in spec §3.4.
func (e *Environment) lookup(name string) (flatten.Node, bool) {
	for frame := e; frame != nil; frame = frame.Parent {
		if v, ok := frame.values[name]; ok {
			return v, true
		}
		if v, ok := frame.closures[name]; ok {
			return v, true
		}
		if v, ok := frame.tuples[name]; ok {
			return v, true
		}
	}
	return nil, false
}
