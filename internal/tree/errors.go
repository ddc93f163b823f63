package tree

import "github.com/pkg/errors"

var (
	// ErrUnknownParent indicates a parent that has not been added yet.
	ErrUnknownParent = errors.New("tree: unknown parent body")

	// ErrDuplicateBody indicates a body name used twice.
	ErrDuplicateBody = errors.New("tree: duplicate body name")

	// ErrUnknownBody indicates a lookup of a name that is not in the tree.
	ErrUnknownBody = errors.New("tree: unknown body")

	// ErrUnrepresentable indicates a requested pose or velocity the joint
	// cannot produce. The wrapping error carries the residual.
	ErrUnrepresentable = errors.New("tree: motion not representable by joint")
)
