// Package errors provides structured, coded errors for emtpl.
//
// Every failure the engine surfaces is a *TemplateError carrying a code from
// the registry, a category, and (for markup problems) the line and column in
// the template where parsing stopped.
//
// # Error Categories
//
//   - parse: malformed markup (duplicate "<", nested comment, unmatched tag)
//   - config: misconfigured directives or configuration files
//   - render: failures while evaluating a tree against component state
//   - source: template lookup failures
//   - store: snapshot persistence failures
//   - cli: invalid command line input
//
// # Usage
//
//	err := errors.New("P005").
//	    WithLocation(markup, offset).
//	    WithSuggestion("Close </li> before closing </ul>")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR P005: Unmatched closing tag
//	//
//	//   line 1, column 9
//	//
//	//     <ul><li></ul>
//	//             ^
//	//
//	//   Hint: Close </li> before closing </ul>
package errors
