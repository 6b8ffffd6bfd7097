package syntax

import "fmt"

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenPlaceholder
	TokenTagOpen
	TokenTagClose
	TokenInclude
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenPlaceholder:
		return "placeholder"
	case TokenTagOpen:
		return "tag open"
	case TokenTagClose:
		return "tag close"
	case TokenInclude:
		return "include"
	}

	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Pos locates a token in its source. Line and Col are
// 1-based; Col counts bytes.
type Pos struct {
	Offset int
	Line   int
	Col    int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is one lexical unit of an FML source. Value is the
// raw text for TokenText, the trimmed path for
// TokenPlaceholder, the tag name for tag tokens and the
// target path for TokenInclude.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   Pos
}

func (tk Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", tk.Kind, tk.Value, tk.Pos)
}
