package syntax

import (
	"fmt"
	"sort"
	"strings"
)

// Style holds the delimiters used to recognize tags,
// include directives and placeholders. The grammar is
// the same for every style; only the surface strings
// differ.
type Style struct {
	// Name is the lookup key ("xml", "bbcode").
	Name string

	// Display qualifies error messages ("XML").
	Display string

	OpenPrefix      string
	OpenSuffix      string
	ClosePrefix     string
	CloseSuffix     string
	SelfCloseSuffix string

	// IncludeName is the directive name recognized as
	// an include, e.g. <include path="a.fml"/>.
	IncludeName string

	PlaceholderOpen  string
	PlaceholderClose string
}

// DefaultStyle is the style name used when none is
// given.
const DefaultStyle = "xml"

var styles = map[string]Style{
	"xml": {
		Name:             "xml",
		Display:          "XML",
		OpenPrefix:       "<",
		OpenSuffix:       ">",
		ClosePrefix:      "</",
		CloseSuffix:      ">",
		SelfCloseSuffix:  "/>",
		IncludeName:      "include",
		PlaceholderOpen:  "{{",
		PlaceholderClose: "}}",
	},
	"bbcode": {
		Name:             "bbcode",
		Display:          "BBCode",
		OpenPrefix:       "[",
		OpenSuffix:       "]",
		ClosePrefix:      "[/",
		CloseSuffix:      "]",
		SelfCloseSuffix:  "/]",
		IncludeName:      "include",
		PlaceholderOpen:  "{{",
		PlaceholderClose: "}}",
	},
}

// LookupStyle returns the style registered under name.
// An empty name selects DefaultStyle.
func LookupStyle(name string) (Style, error) {
	if name == "" {
		name = DefaultStyle
	}

	st, ok := styles[strings.ToLower(name)]
	if !ok {
		return Style{}, fmt.Errorf(
			"unknown tag style %q (want one of %s)",
			name, strings.Join(StyleNames(), ", "),
		)
	}

	return st, nil
}

// StyleNames lists the registered style names in
// lexical order.
func StyleNames() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// OpenTag returns the opening delimiter for name.
func (st Style) OpenTag(name string) string {
	return st.OpenPrefix + name + st.OpenSuffix
}

// CloseTag returns the closing delimiter for name.
func (st Style) CloseTag(name string) string {
	return st.ClosePrefix + name + st.CloseSuffix
}
