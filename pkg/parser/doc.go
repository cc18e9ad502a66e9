// Package parser turns template markup into a vdom.Element tree.
//
// The grammar is a small HTML dialect:
//
//	<ul class="list">
//	    <forEach data="{{items}}" item="it" index="i">
//	        <li key="{{it.id}}" et:click="onPick">{{it.title}}</li>
//	    </forEach>
//	</ul>
//
// Text runs become "text" leaves, comments become "<!--" nodes, and
// <!DOCTYPE ...> is passed through as a single node. Attribute values are
// kept as raw strings; bindings are evaluated later by the render package.
//
// Parsing is all-or-nothing: malformed markup returns a parse error carrying
// the line and column of the problem and no tree.
package parser
