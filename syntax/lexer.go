package syntax

import (
	"strings"
)

// Tokenize splits src into a flat sequence of tokens using
// the delimiters of style. It only fails on markers that
// cannot be terminated: a tag or include marker whose
// suffix never appears, an include without a path, or an
// unterminated or empty placeholder. Nesting is checked
// later by Parse.
func Tokenize(src string, style Style) ([]Token, error) {
	lx := &lexer{src: src, style: style, line: 1, textStart: -1}

	if err := lx.run(); err != nil {
		return nil, err
	}

	return lx.tokens, nil
}

type lexer struct {
	src    string
	style  Style
	off    int
	tokens []Token

	// line bookkeeping; positions are requested in
	// increasing offset order.
	line      int
	lineStart int
	counted   int

	textStart int
	textPos   Pos
}

func (lx *lexer) run() error {
	for lx.off < len(lx.src) {
		matched, err := lx.marker()
		if err != nil {
			return err
		}

		if matched {
			continue
		}

		if lx.textStart < 0 {
			lx.textStart = lx.off
			lx.textPos = lx.at(lx.off)
		}

		lx.off++
	}

	lx.flushText()

	return nil
}

// marker tries every marker kind at the current offset in
// priority order.
func (lx *lexer) marker() (bool, error) {
	rest := lx.src[lx.off:]
	st := lx.style

	if strings.HasPrefix(rest, st.OpenPrefix+st.IncludeName) {
		matched, err := lx.include()
		if matched || err != nil {
			return matched, err
		}
	}

	if strings.HasPrefix(rest, st.OpenPrefix) {
		matched, err := lx.tag(st.OpenPrefix, st.OpenSuffix, TokenTagOpen)
		if matched || err != nil {
			return matched, err
		}
	}

	if strings.HasPrefix(rest, st.ClosePrefix) {
		matched, err := lx.tag(st.ClosePrefix, st.CloseSuffix, TokenTagClose)
		if matched || err != nil {
			return matched, err
		}
	}

	if strings.HasPrefix(rest, st.PlaceholderOpen) {
		return lx.placeholder()
	}

	return false, nil
}

func (lx *lexer) tag(prefix, suffix string, kind TokenKind) (bool, error) {
	start := lx.off
	idx := start + len(prefix)

	name := scanName(lx.src[idx:])
	if name == "" {
		return false, nil
	}

	idx = skipBlanks(lx.src, idx+len(name))

	switch {
	case strings.HasPrefix(lx.src[idx:], suffix):
		lx.emit(kind, name, start, idx+len(suffix))

		return true, nil
	case idx >= len(lx.src):
		return false, newSyntaxError(
			lx.at(start), "unterminated tag %s%s", prefix, name,
		)
	}

	return false, nil
}

func (lx *lexer) include() (bool, error) {
	st := lx.style
	start := lx.off
	idx := start + len(st.OpenPrefix) + len(st.IncludeName)
	rest := lx.src[idx:]

	// "<includes>" is an ordinary tag.
	if rest != "" &&
		!isSpace(rest[0]) &&
		!strings.HasPrefix(rest, st.SelfCloseSuffix) &&
		!strings.HasPrefix(rest, st.OpenSuffix) {
		return false, nil
	}

	attrs := make(map[string]string)
	selfClosed := false

	for {
		idx = skipSpaces(lx.src, idx)
		rest = lx.src[idx:]

		if rest == "" {
			return false, newSyntaxError(
				lx.at(start), "unterminated include directive",
			)
		}

		if strings.HasPrefix(rest, st.SelfCloseSuffix) {
			idx += len(st.SelfCloseSuffix)
			selfClosed = true

			break
		}

		if strings.HasPrefix(rest, st.OpenSuffix) {
			idx += len(st.OpenSuffix)

			break
		}

		name, val, next, ok := scanAttr(lx.src, idx)
		if !ok {
			if next >= len(lx.src) {
				return false, newSyntaxError(
					lx.at(start), "unterminated include directive",
				)
			}

			return false, newSyntaxError(
				lx.at(next), "malformed include attribute",
			)
		}

		attrs[name] = val
		idx = next
	}

	target, ok := attrs["path"]
	if !ok || strings.TrimSpace(target) == "" {
		return false, newSyntaxError(
			lx.at(start), "include directive without a path attribute",
		)
	}

	if !selfClosed {
		closing := st.CloseTag(st.IncludeName)
		if strings.HasPrefix(lx.src[idx:], closing) {
			idx += len(closing)
		}
	}

	lx.emit(TokenInclude, strings.TrimSpace(target), start, idx)

	return true, nil
}

func (lx *lexer) placeholder() (bool, error) {
	st := lx.style
	start := lx.off
	inner := start + len(st.PlaceholderOpen)

	end := strings.Index(lx.src[inner:], st.PlaceholderClose)
	if end < 0 {
		return false, newSyntaxError(
			lx.at(start), "unterminated placeholder",
		)
	}

	path := strings.TrimSpace(lx.src[inner : inner+end])
	if path == "" {
		return false, newSyntaxError(lx.at(start), "empty placeholder")
	}

	lx.emit(TokenPlaceholder, path, start, inner+end+len(st.PlaceholderClose))

	return true, nil
}

// emit flushes pending text, appends a marker token and
// moves the offset past it.
func (lx *lexer) emit(kind TokenKind, val string, start, end int) {
	lx.flushText()
	lx.tokens = append(lx.tokens, Token{
		Kind:  kind,
		Value: val,
		Pos:   lx.at(start),
	})
	lx.off = end
}

func (lx *lexer) flushText() {
	if lx.textStart < 0 {
		return
	}

	lx.tokens = append(lx.tokens, Token{
		Kind:  TokenText,
		Value: lx.src[lx.textStart:lx.off],
		Pos:   lx.textPos,
	})
	lx.textStart = -1
}

// at returns the position of off, which must not be
// lower than any offset passed before.
func (lx *lexer) at(off int) Pos {
	for ; lx.counted < off; lx.counted++ {
		if lx.src[lx.counted] == '\n' {
			lx.line++
			lx.lineStart = lx.counted + 1
		}
	}

	return Pos{Offset: off, Line: lx.line, Col: off - lx.lineStart + 1}
}

// scanAttr reads name="value" or name='value' starting at
// idx. On failure next is where scanning stopped.
func scanAttr(src string, idx int) (name, val string, next int, ok bool) {
	name = scanName(src[idx:])
	if name == "" {
		return "", "", idx, false
	}

	idx = skipSpaces(src, idx+len(name))
	if idx >= len(src) || src[idx] != '=' {
		return "", "", idx, false
	}

	idx = skipSpaces(src, idx+1)
	if idx >= len(src) || (src[idx] != '"' && src[idx] != '\'') {
		return "", "", idx, false
	}

	quote := src[idx]

	end := strings.IndexByte(src[idx+1:], quote)
	if end < 0 {
		return "", "", len(src), false
	}

	return name, src[idx+1 : idx+1+end], idx + end + 2, true
}

func scanName(s string) string {
	if s == "" || !isNameStart(s[0]) {
		return ""
	}

	i := 1
	for i < len(s) && isNameByte(s[i]) {
		i++
	}

	return s[:i]
}

func isNameStart(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		b >= 0x80
}

func isNameByte(b byte) bool {
	return isNameStart(b) ||
		('0' <= b && b <= '9') ||
		b == '-' || b == '.' || b == ':'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// skipBlanks skips spaces and tabs only.
func skipBlanks(s string, idx int) int {
	for idx < len(s) && (s[idx] == ' ' || s[idx] == '\t') {
		idx++
	}

	return idx
}

func skipSpaces(s string, idx int) int {
	for idx < len(s) && isSpace(s[idx]) {
		idx++
	}

	return idx
}
