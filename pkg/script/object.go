package script

import "github.com/go-drift/canopy/pkg/element"

// Object is the script-side handle of a native element. It keeps the element
// alive until Release, whether or not the element is in the tree.
type Object struct {
	ref   *element.Ref
	class *Class
	tag   string
}

// Class returns the object's script class.
func (o *Object) Class() *Class {
	return o.class
}

// Tag returns the native tag the object was built with.
func (o *Object) Tag() string {
	return o.tag
}

// Selector returns the styling key for the object, which is its tag.
func (o *Object) Selector() string {
	return o.tag
}

// Handle returns the element handle, or the zero Handle after Release.
func (o *Object) Handle() element.Handle {
	return o.ref.Handle()
}

// Weak returns a weak reference to the element.
func (o *Object) Weak() element.Weak {
	return o.ref.Weak()
}

// Alive reports whether the object still refers to a live element.
func (o *Object) Alive() bool {
	n := o.ref.Node()
	return n != nil && n.Alive()
}

func (o *Object) node() (*element.Node, error) {
	n := o.ref.Node()
	if n == nil {
		return nil, ErrReleased
	}
	return n, nil
}

// SetAttribute sets an attribute on the element.
func (o *Object) SetAttribute(name, value string) error {
	n, err := o.node()
	if err != nil {
		return err
	}
	return n.SetAttribute(name, value)
}

// Attribute returns an attribute of the element.
func (o *Object) Attribute(name string) (string, error) {
	n, err := o.node()
	if err != nil {
		return "", err
	}
	v, _ := n.Attribute(name)
	return v, nil
}

// AppendChild moves child's element under this one.
func (o *Object) AppendChild(child *Object) error {
	n, err := o.node()
	if err != nil {
		return err
	}
	c, err := child.node()
	if err != nil {
		return err
	}
	return n.AppendChild(c)
}

// Remove detaches the element from its parent. The element stays alive until
// the object is released.
func (o *Object) Remove() error {
	n, err := o.node()
	if err != nil {
		return err
	}
	n.Remove()
	return nil
}

// Release drops the object's hold on the element. An element that is not in
// the tree is destroyed. Release is idempotent.
func (o *Object) Release() {
	o.ref.Release()
}
