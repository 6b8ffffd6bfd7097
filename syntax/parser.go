package syntax

// Parse builds the node tree for tokens. Every closing tag
// must match the most recently opened one by exact name,
// and no tag may remain open at the end. Violations are
// reported as a *SyntaxError whose message starts with
// "Malformed XML" (or the Display name of style).
func Parse(tokens []Token, style Style) ([]Node, error) {
	var (
		root  []Node
		stack []*Tag
	)

	appendNode := func(n Node) {
		if len(stack) == 0 {
			root = append(root, n)

			return
		}

		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	for _, tk := range tokens {
		switch tk.Kind {
		case TokenText:
			appendNode(&Text{Pos: tk.Pos, Text: tk.Value})
		case TokenPlaceholder:
			appendNode(&Placeholder{Pos: tk.Pos, Path: tk.Value})
		case TokenInclude:
			appendNode(&Include{Pos: tk.Pos, Path: tk.Value})
		case TokenTagOpen:
			stack = append(stack, &Tag{Pos: tk.Pos, Name: tk.Value})
		case TokenTagClose:
			if len(stack) == 0 {
				return nil, malformed(
					style, tk.Pos,
					"unexpected closing tag %s",
					style.CloseTag(tk.Value),
				)
			}

			top := stack[len(stack)-1]
			if top.Name != tk.Value {
				return nil, malformed(
					style, tk.Pos,
					"closing tag %s does not match %s opened at line %d",
					style.CloseTag(tk.Value),
					style.OpenTag(top.Name),
					top.Pos.Line,
				)
			}

			stack = stack[:len(stack)-1]
			appendNode(top)
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]

		return nil, malformed(
			style, top.Pos,
			"unclosed tag %s", style.OpenTag(top.Name),
		)
	}

	return root, nil
}

// ParseString tokenizes and parses src.
func ParseString(src string, style Style) ([]Node, error) {
	tokens, err := Tokenize(src, style)
	if err != nil {
		return nil, err
	}

	return Parse(tokens, style)
}

func malformed(style Style, pos Pos, format string, args ...any) *SyntaxError {
	display := style.Display
	if display == "" {
		display = "XML"
	}

	return newSyntaxError(pos, "Malformed "+display+": "+format, args...)
}
