package registry

import "errors"

var (
	// ErrEmptyTag is returned when registering or creating with an empty tag.
	ErrEmptyTag = errors.New("registry: empty tag")
	// ErrNilFactory is returned when registering a nil factory.
	ErrNilFactory = errors.New("registry: nil factory")
	// ErrDuplicateTag is returned when a tag is registered twice under RejectDuplicates.
	ErrDuplicateTag = errors.New("registry: tag already registered")
	// ErrSealed is returned when registering after Seal.
	ErrSealed = errors.New("registry: sealed")
	// ErrInvalidProvider is returned when provider provenance fails validation.
	ErrInvalidProvider = errors.New("registry: invalid provider")
	// ErrUnknownTag is returned when no factory is registered for a tag.
	ErrUnknownTag = errors.New("registry: unknown tag")
	// ErrTagMismatch is returned when instantiating a backend for a node created under another tag.
	ErrTagMismatch = errors.New("registry: node tag does not match")
	// ErrNilBackend is returned when a factory returns nil.
	ErrNilBackend = errors.New("registry: factory returned nil backend")
)
