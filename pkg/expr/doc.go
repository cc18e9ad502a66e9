// Package expr evaluates the restricted script language used by em:
// attributes and by logical or ternary bindings.
//
// The language has literals (numbers, quoted strings, true, false, null,
// undefined), dotted identifier paths, unary ! - +, the binary operators
//
//	||  &&  |  &  == != === !==  < > <= >=  + -  * / %
//
// in increasing order of precedence, parentheses, and the ternary
// cond ? a : b. The keywords eq, neq, seq, sneq, lt, gt, lteq and gteq are
// aliases for ==, !=, ===, !==, <, >, <= and >=.
//
// Identifiers resolve against a Scope: loop data first, then the component.
// A leading "this." is ignored. Unresolved identifiers evaluate to nil.
//
// Operators follow JavaScript semantics: + concatenates when either side is
// a string, == is loose equality, && and || return an operand. Integer
// operands stay integers except under /.
package expr
