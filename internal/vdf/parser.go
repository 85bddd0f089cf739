// Package vdf reads and writes the KeyValues text format the Steam client
// uses for its on-disk state (libraryfolders.vdf, appmanifest_*.acf,
// config.vdf, localconfig.vdf, ...).
//
// The grammar is loose: a document is an implicit node made of `key value`
// or `key { ... }` pairs. Tokens are double-quoted strings or unquoted runs
// of non-whitespace, non-brace characters. `//` starts a line comment. Keys
// may repeat within a node and every occurrence is preserved.
package vdf

import (
	"bytes"
	"fmt"
	"strings"
)

// MaxDepth bounds node nesting. Deeper input fails with a SyntaxError
// instead of recursing without limit.
const MaxDepth = 64

// SyntaxError reports malformed input with the line it was detected on.
type SyntaxError struct {
	File   string
	Line   int
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	text string
	line int
}

type lexer struct {
	src  []byte
	pos  int
	line int
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func newLexer(src []byte) *lexer {
	return &lexer{src: bytes.TrimPrefix(src, utf8BOM), line: 1}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) scan() (token, error) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: l.line}, nil
	}

	start := l.line
	switch c := l.src[l.pos]; c {
	case '{':
		l.pos++
		return token{kind: tokOpen, text: "{", line: start}, nil
	case '}':
		l.pos++
		return token{kind: tokClose, text: "}", line: start}, nil
	case '"':
		return l.scanQuoted()
	}

	begin := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isSpace(c) || c == '{' || c == '}' || c == '"' {
			break
		}
		l.pos++
	}
	return token{kind: tokString, text: string(l.src[begin:l.pos]), line: start}, nil
}

// skipCondition consumes a platform conditional such as [$WIN32] or
// [!$OSX] if one comes next. The client writes them after a complete pair.
func (l *lexer) skipCondition() error {
	l.skipSpaceAndComments()
	rest := l.src[l.pos:]
	if !bytes.HasPrefix(rest, []byte("[$")) && !bytes.HasPrefix(rest, []byte("[!$")) {
		return nil
	}
	end := bytes.IndexByte(rest, ']')
	if end < 0 || bytes.IndexByte(rest[:end], '\n') >= 0 {
		return &SyntaxError{Line: l.line, Reason: "unterminated conditional"}
	}
	l.pos += end + 1
	return nil
}

func (l *lexer) scanQuoted() (token, error) {
	start := l.line
	l.pos++ // opening quote

	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return token{kind: tokString, text: sb.String(), line: start}, nil
		case '\\':
			if l.pos+1 >= len(l.src) {
				l.pos++
				sb.WriteByte('\\')
				continue
			}
			esc := l.src[l.pos+1]
			switch esc {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 't':
				sb.WriteByte('\t')
			case 'n':
				sb.WriteByte('\n')
			default:
				// Unknown escapes are kept verbatim so Windows-style paths survive.
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}
			if esc == '\n' {
				l.line++
			}
			l.pos += 2
		case '\n':
			l.line++
			sb.WriteByte(c)
			l.pos++
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return token{}, &SyntaxError{Line: start, Reason: "unterminated quoted string"}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// Parse reads a whole document and returns its implicit root node. An empty
// document yields an empty node.
func Parse(src []byte) (*Value, error) {
	p := &docParser{lex: newLexer(src)}
	root := NewNode()
	if err := p.parseBody(root, 0, 0); err != nil {
		return nil, err
	}
	return root, nil
}

// ParseString is Parse for string input.
func ParseString(src string) (*Value, error) {
	return Parse([]byte(src))
}

type docParser struct {
	lex *lexer
}

// parseBody fills node with pairs until EOF (root) or the closing brace of a
// nested node opened on openLine.
func (p *docParser) parseBody(node *Value, depth, openLine int) error {
	for {
		tok, err := p.lex.scan()
		if err != nil {
			return err
		}

		switch tok.kind {
		case tokEOF:
			if depth > 0 {
				return &SyntaxError{Line: tok.line, Reason: fmt.Sprintf("unexpected end of input: '{' opened on line %d is never closed", openLine)}
			}
			return nil
		case tokClose:
			if depth == 0 {
				return &SyntaxError{Line: tok.line, Reason: "unmatched '}'"}
			}
			return nil
		case tokOpen:
			return &SyntaxError{Line: tok.line, Reason: "unexpected '{' without a key"}
		}

		if err := p.parsePair(node, tok, depth); err != nil {
			return err
		}
	}
}

func (p *docParser) parsePair(node *Value, key token, depth int) error {
	val, err := p.lex.scan()
	if err != nil {
		return err
	}

	switch val.kind {
	case tokString:
		node.Add(key.text, NewLeaf(val.text))
	case tokOpen:
		if depth+1 > MaxDepth {
			return &SyntaxError{Line: val.line, Reason: fmt.Sprintf("maximum nesting depth %d exceeded", MaxDepth)}
		}
		child := NewNode()
		if err := p.parseBody(child, depth+1, val.line); err != nil {
			return err
		}
		node.Add(key.text, child)
	case tokClose, tokEOF:
		return &SyntaxError{Line: val.line, Reason: fmt.Sprintf("key %q has no value", key.text)}
	}

	return p.lex.skipCondition()
}
