// Package render renders parsed templates against a component and diffs the
// result against the previous render in the same pass.
//
// A render walks the new tree depth-first. For each sibling list it expands
// em:for and forEach directives, inserts caller content at content
// placeholders, evaluates if/em:if, renders attributes and text through the
// syntax handler chain, and then matches each node against the unclaimed
// nodes of the previous sibling list:
//
//   - keyed nodes match on tag and key;
//   - unkeyed nodes match on tag and a similarity score of at least
//     Config.SimilarityThreshold.
//
// Matched nodes are marked NORMAL, UPDATE, MOVE or MOVEUPDATE and inherit the
// previous node's platform reference and virtual ID. Unmatched new nodes
// stay APPEND. Unclaimed previous nodes are marked DELETE and collected in
// the parent's DeleteElements.
//
//	r := render.New(render.Config{})
//	tree, _ := parser.Parse(markup)
//	first, _ := r.Render(tree, nil, component, nil)
//	// ... component state changes ...
//	next, _ := r.Render(tree, first, component, nil)
//
// The input tree is never modified. The previous tree is: matched nodes are
// flagged and unclaimed ones get status DELETE, so two renders must not
// diff against the same previous tree concurrently.
//
// HTML and InnerHTML serialize the live part of a rendered tree with
// escaping.
package render
