package rpp

import (
	"strings"
)

// quote characters accepted by the tokenizer, in writer preference order.
const quoteChars = "\"'`"

// Parse builds a chunk tree from the lines of a project file. The first
// non-blank line must open a chunk; the returned chunk is that root.
func Parse(lines []string) (*Chunk, error) {
	var root *Chunk
	var stack []*Chunk

	for i, raw := range lines {
		lineNo := i + 1
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}

		switch {
		case strings.HasPrefix(text, "<"):
			params, err := tokenize(text[1:], lineNo)
			if err != nil {
				return nil, err
			}
			if len(params) == 0 {
				return nil, &FormatError{Line: lineNo, Msg: "chunk opener without a name"}
			}
			chunk := &Chunk{Name: params[0], Params: params[1:]}
			if root == nil {
				root = chunk
			} else {
				if len(stack) == 0 {
					return nil, &FormatError{Line: lineNo, Msg: "content after root chunk closed"}
				}
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, chunk)
			}
			stack = append(stack, chunk)

		case text == ">":
			if len(stack) == 0 {
				return nil, &FormatError{Line: lineNo, Msg: "unbalanced chunk terminator"}
			}
			stack = stack[:len(stack)-1]

		default:
			if len(stack) == 0 {
				return nil, &FormatError{Line: lineNo, Msg: "parameter line outside of any chunk"}
			}
			params, err := tokenize(text, lineNo)
			if err != nil {
				return nil, err
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, &Line{Params: params})
		}
	}

	if root == nil {
		return nil, &FormatError{Msg: "no chunk found"}
	}
	if len(stack) != 0 {
		return nil, &FormatError{Msg: "unterminated chunk: " + stack[len(stack)-1].Name}
	}
	return root, nil
}

// ParseString is Parse over a whole document.
func ParseString(text string) (*Chunk, error) {
	return Parse(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}

// tokenize splits a declaration or parameter line into tokens. Tokens are
// whitespace separated; a token beginning with one of the quote characters
// runs to the matching quote and may contain whitespace and the other two
// quote characters.
func tokenize(text string, lineNo int) ([]string, error) {
	var params []string
	i := 0
	n := len(text)
	for i < n {
		// skip separators
		for i < n && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}
		if q := text[i]; strings.IndexByte(quoteChars, q) >= 0 {
			end := strings.IndexByte(text[i+1:], q)
			if end < 0 {
				return nil, &FormatError{Line: lineNo, Msg: "unterminated quoted parameter"}
			}
			params = append(params, text[i+1:i+1+end])
			i += end + 2
			continue
		}
		start := i
		for i < n && text[i] != ' ' && text[i] != '\t' {
			i++
		}
		params = append(params, text[start:i])
	}
	return params, nil
}
