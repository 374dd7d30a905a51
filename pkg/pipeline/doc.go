// Package pipeline runs paint cycles over an element tree.
//
// A cycle has two phases. Collecting walks the tree in paint order (parent
// before children, siblings in order) and asks each visible node's backend
// for a draw closure. Executing replays those closures against a Painter.
// The phases are split so execution can happen later or on another
// goroutine: a Frame holds only captured values and never reads the tree.
//
// A backend that fails or panics during either phase loses its own
// contribution for that frame. The fault is reported through the errors
// package and the rest of the frame proceeds.
package pipeline
