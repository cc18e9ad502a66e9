// Package syntax renders attribute values and text through an ordered chain
// of handlers.
//
// Each attribute of an element is offered to the handlers in priority order:
//
//  1. EventHandler: et:name="path" binds a component func as an event.
//  2. DirectExprHandler: em:name="script" assigns the result of a script
//     evaluated by package expr.
//  3. SpreadHandler: ...path merges an object's fields into the attributes.
//  4. TextHandler: rewrites {{ }} bindings in the value.
//
// A handler that matches sets Event.Break, which stops the chain for that
// attribute. Text nodes are rendered with TextHandler alone.
package syntax
