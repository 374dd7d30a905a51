package registry

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/errors"
)

// Instantiate builds the backend registered for tag and attaches it to node.
// The factory receives only a weak reference to the node.
func (r *Registry) Instantiate(tag string, node *element.Node) (element.Backend, error) {
	entry, ok := r.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	if node.Tag() != tag {
		return nil, fmt.Errorf("%w: node is %q, requested %q", ErrTagMismatch, node.Tag(), tag)
	}

	backend, err := r.build(entry, node.Weak())
	if err != nil {
		return nil, err
	}
	if err := node.Attach(backend); err != nil {
		return nil, fmt.Errorf("instantiate %q: %w", tag, err)
	}
	return backend, nil
}

// Create builds a node for tag inside tree and attaches its backend. An
// unknown tag fails before any node exists. The returned Ref pins the node
// until it is released.
func (r *Registry) Create(tree *element.Tree, tag string) (*element.Ref, error) {
	if tag == "" {
		return nil, ErrEmptyTag
	}
	if _, ok := r.Lookup(tag); !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownTag, tag)
		errors.Report(&errors.CanopyError{
			Op:   "registry.Create",
			Kind: errors.KindConstruct,
			Tag:  tag,
			Err:  err,
		})
		return nil, err
	}

	ref := tree.Create(tag)
	if _, err := r.Instantiate(tag, ref.Node()); err != nil {
		ref.Release()
		return nil, err
	}
	return ref, nil
}

// build runs the factory, converting a panic into an error.
func (r *Registry) build(entry Entry, w element.Weak) (backend element.Backend, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			errors.ReportPanic(&errors.PanicError{
				Op:         "registry.factory(" + entry.Tag + ")",
				Value:      rec,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
			backend, err = nil, fmt.Errorf("registry: factory for %q panicked: %v", entry.Tag, rec)
		}
	}()
	backend = entry.Factory(w)
	if isNil(backend) {
		return nil, fmt.Errorf("%w: %q", ErrNilBackend, entry.Tag)
	}
	return backend, nil
}

// isNil also catches a typed nil pointer wrapped in the interface.
func isNil(b element.Backend) bool {
	if b == nil {
		return true
	}
	v := reflect.ValueOf(b)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
