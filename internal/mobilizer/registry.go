package mobilizer

import (
	"sort"

	"github.com/pkg/errors"
)

const (
	KindWeld        = "weld"
	KindPin         = "pin"
	KindSlider      = "slider"
	KindCylinder    = "cylinder"
	KindUniversal   = "universal"
	KindPlanar      = "planar"
	KindTranslation = "translation"
	KindGimbal      = "gimbal"
	KindBall        = "ball"
	KindFree        = "free"
)

var ErrUnknownKind = errors.New("unknown mobilizer kind")

type constructor func(alloc *SlotAllocator) Mobilizer

var kinds = map[string]constructor{
	KindWeld:        func(a *SlotAllocator) Mobilizer { return NewWeld(a) },
	KindPin:         func(a *SlotAllocator) Mobilizer { return NewPin(a) },
	KindSlider:      func(a *SlotAllocator) Mobilizer { return NewSlider(a) },
	KindCylinder:    func(a *SlotAllocator) Mobilizer { return NewCylinder(a) },
	KindUniversal:   func(a *SlotAllocator) Mobilizer { return NewUniversal(a) },
	KindPlanar:      func(a *SlotAllocator) Mobilizer { return NewPlanar(a) },
	KindTranslation: func(a *SlotAllocator) Mobilizer { return NewTranslation(a) },
	KindGimbal:      func(a *SlotAllocator) Mobilizer { return NewGimbal(a) },
	KindBall:        func(a *SlotAllocator) Mobilizer { return NewBall(a) },
	KindFree:        func(a *SlotAllocator) Mobilizer { return NewFree(a) },
}

// New constructs a mobilizer of the named kind and advances alloc past its
// slots. An unknown kind leaves alloc untouched.
func New(kind string, alloc *SlotAllocator) (Mobilizer, error) {
	fn, ok := kinds[kind]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "%q", kind)
	}
	return fn(alloc), nil
}

// Kinds lists the registered kinds in sorted order.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
