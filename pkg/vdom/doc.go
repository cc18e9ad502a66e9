// Package vdom provides the element tree shared by the parser and the
// render/diff engine.
//
// An Element is a lightweight descriptor of a markup node: tag, ordered
// attributes, children, and the annotations a render pass leaves behind
// (Status, ChangeAttrs, DeleteAttrs, DeleteElements). Elements never own
// platform objects; Ref only carries an opaque reference handed back by
// whatever layer attaches the tree to a real UI.
//
// # Statuses
//
// Freshly parsed or cloned nodes start as StatusAppend. After a diff pass
// every surviving node is one of Normal, Update, Move or MoveUpdate, and
// superseded previous nodes are Delete.
//
// # Arena
//
// Structural edits (insert, replace, remove) go through an Arena session:
//
//	a := vdom.NewArena()
//	h := a.Acquire(parent)
//	defer a.Release(h)
//	if err := a.ReplaceAt(h, 2, clones...); err != nil {
//	    return err
//	}
//
// Every edit re-derives the Path of the shifted siblings and their subtrees.
package vdom
