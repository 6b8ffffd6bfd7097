// Package templating renders FML files: text with {{ path }} placeholders,
// paired tags and include directives pulling in other FML files.
//
// ParseFML is the one-call entry point. An Engine carries the tag style,
// the loader and the include parallelism across calls, and Expand writes
// the result to a file atomically. Placeholders resolve against a
// *value.Object; tags are re-emitted on their own lines around their
// rendered children; includes resolve against the directory of the file
// that contains them.
//
// Failures are typed: *syntax.SyntaxError, *UndefinedVariableError,
// *FileNotFoundError and *IncludeCycleError, each matching a sentinel with
// errors.Is.
package templating
