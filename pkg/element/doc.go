// Package element implements the native element tree that backends attach to.
//
// A Tree owns its nodes. A node is kept alive while it is part of the tree
// (as the root or as some node's child) or while a strong [Ref] pins it.
// Once neither holds, the tree destroys the node: its backend is detached
// first, then its handle is invalidated, then its children are released.
//
// Backends never hold strong references to their node. They hold a [Weak]
// and upgrade it on every hook call; the upgrade fails deterministically once
// the node is destroyed, which is the only signal a backend gets that it has
// outlived its element.
//
// A Tree is not safe for concurrent use. All mutation happens on the UI
// goroutine; values captured from nodes (draw closures, frames) are what cross
// goroutine boundaries.
package element
