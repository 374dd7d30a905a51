package script

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-drift/canopy/pkg/element"
	"github.com/go-drift/canopy/pkg/errors"
	"github.com/go-drift/canopy/pkg/registry"
)

// BaseClass is the name of the root class every script class derives from.
const BaseClass = "Element"

// Class is an entry in the bridge's class table.
type Class struct {
	// Name is the script-visible class name.
	Name string
	// Tag is the native tag instances are built with. Empty for BaseClass,
	// whose constructor takes the tag as an argument.
	Tag string
	// Base is the parent class, nil for BaseClass.
	Base *Class
}

// ConstructorFunc builds an instance with initial attributes.
type ConstructorFunc func(attrs map[string]string) (*Object, error)

// Option configures a Bridge.
type Option func(*Bridge)

// WithStyleSheet sets the styling collaborator consulted at construction.
func WithStyleSheet(s StyleSheet) Option {
	return func(b *Bridge) {
		if s != nil {
			b.styles = s
		}
	}
}

// Bridge maps script classes to native tags.
type Bridge struct {
	reg     *registry.Registry
	tree    *element.Tree
	styles  StyleSheet
	base    *Class
	classes map[string]*Class
	order   []string
}

// NewBridge returns a bridge constructing elements in tree from reg.
func NewBridge(reg *registry.Registry, tree *element.Tree, opts ...Option) *Bridge {
	base := &Class{Name: BaseClass}
	b := &Bridge{
		reg:     reg,
		tree:    tree,
		styles:  noStyles{},
		base:    base,
		classes: map[string]*Class{BaseClass: base},
		order:   []string{BaseClass},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Define adds a subclass of BaseClass fixed to tag. The tag does not need to
// be registered yet.
func (b *Bridge) Define(name, tag string) (*Class, error) {
	if name == "" {
		return nil, ErrEmptyClassName
	}
	if tag == "" {
		return nil, fmt.Errorf("%w: class %q", ErrEmptyTag, name)
	}
	if _, exists := b.classes[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrClassExists, name)
	}
	c := &Class{Name: name, Tag: tag, Base: b.base}
	b.classes[name] = c
	b.order = append(b.order, name)
	return c, nil
}

// Class returns the class with the given name.
func (b *Bridge) Class(name string) (*Class, bool) {
	c, ok := b.classes[name]
	return c, ok
}

// Classes returns class names in definition order, BaseClass first.
func (b *Bridge) Classes() []string {
	return slices.Clone(b.order)
}

// Construct builds an instance of a subclass. BaseClass cannot be constructed
// this way; use ConstructTag.
func (b *Bridge) Construct(className string, attrs map[string]string) (*Object, error) {
	c, ok := b.classes[className]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, className)
	}
	if c.Tag == "" {
		return nil, fmt.Errorf("%w: %q", ErrTagRequired, className)
	}
	return b.construct(c, c.Tag, attrs)
}

// ConstructTag is the base class's tag-bearing constructor.
func (b *Bridge) ConstructTag(tag string, attrs map[string]string) (*Object, error) {
	if tag == "" {
		return nil, ErrTagRequired
	}
	return b.construct(b.base, tag, attrs)
}

// Constructor returns a function a script runtime can bind as the class
// constructor.
func (b *Bridge) Constructor(className string) (ConstructorFunc, error) {
	c, ok := b.classes[className]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, className)
	}
	if c.Tag == "" {
		return nil, fmt.Errorf("%w: %q", ErrTagRequired, className)
	}
	return func(attrs map[string]string) (*Object, error) {
		return b.construct(c, c.Tag, attrs)
	}, nil
}

func (b *Bridge) construct(c *Class, tag string, attrs map[string]string) (*Object, error) {
	ref, err := b.reg.Create(b.tree, tag)
	if err != nil {
		errors.Logger().Debug("script construction failed", "class", c.Name, "tag", tag, "err", err)
		return nil, &errors.CanopyError{
			Op:   "script.Construct(" + c.Name + ")",
			Kind: errors.KindScript,
			Tag:  tag,
			Err:  err,
		}
	}
	n := ref.Node()
	// Style rules first, explicit attributes override them.
	for _, src := range []map[string]string{b.styles.Rules(tag), attrs} {
		for _, k := range slices.Sorted(maps.Keys(src)) {
			if err := n.SetAttribute(k, src[k]); err != nil {
				ref.Release()
				return nil, err
			}
		}
	}
	return &Object{ref: ref, class: c, tag: tag}, nil
}

// Mount makes obj the root of the bridge's tree.
func (b *Bridge) Mount(obj *Object) error {
	n, err := obj.node()
	if err != nil {
		return err
	}
	return b.tree.SetRoot(n)
}
