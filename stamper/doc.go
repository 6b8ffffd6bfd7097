// Package stamper reads Bazel workspace status files ("KEY VALUE" per line)
// into Stamps and substitutes single-brace {KEY} placeholders with them.
// The fml command uses it to stamp -variable values and to expose the
// stamps to templates.
package stamper
