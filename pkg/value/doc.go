// Package value holds the dynamic-value helpers the template engine uses to
// read and write component state.
//
// Component state is an arbitrary Go value: maps with string keys, structs
// (exported fields, matched by json tag or case-insensitively by name),
// pointers, slices and funcs. Paths are dotted ("user.address.city"); a
// numeric segment indexes a slice or array.
//
// Lookups never fail. A missing path yields nil, which the engine treats
// as an undefined binding.
package value
