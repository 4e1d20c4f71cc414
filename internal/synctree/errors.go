package synctree

import (
	"errors"
	"fmt"

	"golang.org/x/xerrors"
)

// Sentinel errors for each behavioral error kind the core can raise.
// Callers use errors.Is against these, never against the wrapping frame
// xerrors attaches.
var (
	// ErrEmptyRoot is returned when a tree is constructed without root payload.
	ErrEmptyRoot = errors.New("tree must be initialised with root payload")
	// ErrUnknownKey is returned when a pk has no corresponding node.
	ErrUnknownKey = errors.New("could not find pk")
	// ErrMissingAttribute is returned by get/delete on an absent payload key.
	ErrMissingAttribute = errors.New("missing attribute")
	// ErrInvalidChild is returned when add_child is given a non-Node argument.
	ErrInvalidChild = errors.New("invalid child")
	// ErrUnsupported is returned by operations the core deliberately does not implement.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrDigestFailure is returned by the query surface when a node's
	// stored hash, info_hash or children_hash fails basic shape
	// validation (digest.Valid) before being handed to a client.
	ErrDigestFailure = errors.New("could not digest value")
)

// wrap attaches a stack frame to a sentinel error the way the trie
// libraries in the pack wrap structural failures, while keeping it
// recoverable with errors.Is/errors.As against the sentinel.
func wrap(sentinel error, format string, args ...any) error {
	return xerrors.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
