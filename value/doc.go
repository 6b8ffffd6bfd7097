// Package value models the variables available to an FML render.
//
// A Value is a closed variant: String, Number, Bool, Null, Array or
// *Object, where Object keeps the insertion order of its keys. Resolve
// walks a dotted path ("person.name", "tags.0") through a context object
// and Format turns the located value into text, pretty-printing arrays and
// objects as indented JSON. Decode and DecodeFile read JSON, YAML and TOML
// context files while preserving document key order; FromGo converts
// ordinary Go values.
package value
