package phylo

import "github.com/pkg/errors"

var (
	ErrNotALeaf           = errors.New("not a leaf")
	ErrUnknownID          = errors.New("unknown node id")
	ErrInvalidLength      = errors.New("invalid branch length")
	ErrInvariantViolation = errors.New("tree invariant violated")
)
