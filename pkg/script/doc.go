// Package script exposes registered native tags to a scripting layer.
//
// A Bridge keeps a class table rooted at the base class "Element". Script
// subclasses fix exactly one tag with Define; the tag is resolved against the
// backend registry when an instance is constructed, not when the class is
// defined, so tags registered after the bridge was set up still work.
//
// The bridge does not embed a script engine. A runtime binds the functions
// returned by Constructor and works with the resulting Objects.
package script
