package parsers

import (
	"html"
	"strconv"
	"strings"
	"unicode/utf16"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// cooker accumulates the cooked value of a string or template chunk.
// UTF-16 surrogate escapes arrive as separate escape_sequence nodes, so a
// pending high surrogate is held until the next piece is known.
type cooker struct {
	sb      strings.Builder
	pending rune
}

func (c *cooker) flushPending() {
	if c.pending != 0 {
		c.sb.WriteRune(utf16.DecodeRune(c.pending, 0))
		c.pending = 0
	}
}

func (c *cooker) text(s string) {
	c.flushPending()
	c.sb.WriteString(s)
}

func (c *cooker) unit(r rune) {
	switch {
	case utf16.IsSurrogate(r) && r < 0xDC00:
		c.flushPending()
		c.pending = r
	case utf16.IsSurrogate(r) && c.pending != 0:
		c.sb.WriteRune(utf16.DecodeRune(c.pending, r))
		c.pending = 0
	default:
		c.flushPending()
		c.sb.WriteRune(r)
	}
}

// escape decodes one JavaScript escape sequence such as \n, \x41 or \u{1F600}.
func (c *cooker) escape(seq string) {
	if len(seq) < 2 || seq[0] != '\\' {
		c.text(seq)
		return
	}
	body := seq[1:]
	switch body[0] {
	case 'n':
		c.text("\n")
	case 'r':
		c.text("\r")
	case 't':
		c.text("\t")
	case 'b':
		c.text("\b")
	case 'f':
		c.text("\f")
	case 'v':
		c.text("\v")
	case '0':
		if len(body) == 1 {
			c.text("\x00")
			return
		}
		c.octal(body)
	case '\n', '\r', 0xe2:
		// Line continuation.
		c.flushPending()
	case 'x':
		if v, err := strconv.ParseUint(body[1:], 16, 32); err == nil {
			c.unit(rune(v))
			return
		}
		c.text(body)
	case 'u':
		hex := strings.TrimSuffix(strings.TrimPrefix(body[1:], "{"), "}")
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			c.unit(rune(v))
			return
		}
		c.text(body)
	default:
		if body[0] >= '1' && body[0] <= '7' {
			c.octal(body)
			return
		}
		c.text(body)
	}
}

func (c *cooker) octal(digits string) {
	if v, err := strconv.ParseUint(digits, 8, 32); err == nil {
		c.unit(rune(v))
		return
	}
	c.text(digits)
}

func (c *cooker) String() string {
	c.flushPending()
	return c.sb.String()
}

// cookString returns the runtime value of a string node. Regular strings
// carry escape_sequence children; JSX attribute strings carry
// html_character_reference children instead.
func cookString(node *sitter.Node, source []byte) string {
	var c cooker
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		switch child.Kind() {
		case "string_fragment", "unescaped_double_string_fragment", "unescaped_single_string_fragment":
			c.text(extractNodeText(child, source))
		case "escape_sequence":
			c.escape(extractNodeText(child, source))
		case "html_character_reference":
			c.text(html.UnescapeString(extractNodeText(child, source)))
		}
	}
	return c.String()
}

// parseNumber converts a JavaScript numeric literal to float64.
func parseNumber(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSuffix(raw, "n"), "_", "")
	if legacyOctal(s) {
		v, err := strconv.ParseUint(s[1:], 8, 64)
		if err != nil {
			return 0, false
		}
		return float64(v), true
	}
	if len(s) > 1 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			v, err := strconv.ParseUint(s, 0, 64)
			if err != nil {
				return 0, false
			}
			return float64(v), true
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// legacyOctal reports whether s is a sloppy-mode octal literal such as 010.
// Literals like 08 that contain 8 or 9 are decimal.
func legacyOctal(s string) bool {
	if len(s) < 2 || s[0] != '0' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}
	return true
}

// normalizeLineEndings applies the template literal rule that CRLF and CR
// in the source text both read as LF.
func normalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}
