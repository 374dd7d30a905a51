package script

import "errors"

var (
	// ErrEmptyClassName is returned when defining a class without a name.
	ErrEmptyClassName = errors.New("script: empty class name")
	// ErrClassExists is returned when a class name is defined twice.
	ErrClassExists = errors.New("script: class already defined")
	// ErrEmptyTag is returned when defining a subclass without a tag.
	ErrEmptyTag = errors.New("script: empty tag")
	// ErrUnknownClass is returned when constructing an undefined class.
	ErrUnknownClass = errors.New("script: unknown class")
	// ErrTagRequired is returned when constructing the base class without a tag.
	ErrTagRequired = errors.New("script: base class requires a tag")
	// ErrReleased is returned by Object methods after Release.
	ErrReleased = errors.New("script: object released")
)
