package rpp

import (
	"strings"
)

const indentStep = "  "

// FormatLines serializes a chunk tree back to project-file lines. Parsing
// the result reproduces a structurally equal tree.
func FormatLines(root *Chunk) []string {
	var out []string
	writeChunk(&out, root, "")
	return out
}

// FormatString serializes a chunk tree to a single document with a trailing
// newline.
func FormatString(root *Chunk) string {
	return strings.Join(FormatLines(root), "\n") + "\n"
}

func writeChunk(out *[]string, c *Chunk, indent string) {
	*out = append(*out, indent+"<"+joinParams(append([]string{c.Name}, c.Params...)))
	childIndent := indent + indentStep
	for _, n := range c.Children {
		switch v := n.(type) {
		case *Chunk:
			writeChunk(out, v, childIndent)
		case *Line:
			*out = append(*out, childIndent+joinParams(v.Params))
		}
	}
	*out = append(*out, indent+">")
}

func joinParams(params []string) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = quoteParam(p)
	}
	return strings.Join(parts, " ")
}

// quoteParam quotes a parameter when it is empty, contains whitespace or a
// quote character, or would read back as a chunk delimiter at the start of a
// line. The first quote character not present in the value is used; when the
// value contains all three, backticks inside it are degraded to single
// quotes so the token stays parseable.
func quoteParam(p string) string {
	if p != "" && p != ">" && p[0] != '<' && !strings.ContainsAny(p, " \t\"'`") {
		return p
	}
	for _, q := range quoteChars {
		if !strings.ContainsRune(p, q) {
			return string(q) + p + string(q)
		}
	}
	return "`" + strings.ReplaceAll(p, "`", "'") + "`"
}
