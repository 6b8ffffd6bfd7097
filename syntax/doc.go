// Package syntax turns FML source into a node tree. Tokenize scans the
// text for include directives, opening and closing tags and {{ path }}
// placeholders using the delimiters of a Style ("xml" or "bbcode"); Parse
// checks tag nesting with an explicit stack and builds Text, Placeholder,
// Tag and Include nodes. Structural problems are reported as *SyntaxError.
package syntax
