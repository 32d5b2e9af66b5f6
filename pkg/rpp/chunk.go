// Package rpp provides the chunk-tree model for the Reaper project text format
package rpp

import (
	"fmt"
	"strconv"
)

// Node is an element of a chunk tree: either a nested *Chunk or a flat *Line.
type Node interface {
	node()
}

// Line is a flat parameter line inside a chunk. The first parameter is the
// line's tag (e.g. "POSITION", "VOLPAN").
type Line struct {
	Params []string
}

func (l *Line) node() {}

// Tag returns the line's leading token, or "" for an empty line.
func (l *Line) Tag() string {
	if len(l.Params) == 0 {
		return ""
	}
	return l.Params[0]
}

// String returns the parameter at index i (counting after the tag),
// or def when absent.
func (l *Line) String(i int, def string) string {
	return paramAt(l.Params, i+1, def)
}

// Int returns the parameter at index i coerced to int, or def.
func (l *Line) Int(i int, def int) int {
	return coerceInt(paramAt(l.Params, i+1, ""), def)
}

// Float returns the parameter at index i coerced to float64, or def.
func (l *Line) Float(i int, def float64) float64 {
	return coerceFloat(paramAt(l.Params, i+1, ""), def)
}

// Chunk is a named tree node. Its own declaration line carries Params;
// Children holds nested chunks and parameter lines in document order.
type Chunk struct {
	Name     string
	Params   []string
	Children []Node
}

func (c *Chunk) node() {}

// AddChunk appends a nested chunk and returns it.
func (c *Chunk) AddChunk(name string, params ...string) *Chunk {
	child := &Chunk{Name: name, Params: params}
	c.Children = append(c.Children, child)
	return child
}

// AddLine appends a parameter line.
func (c *Chunk) AddLine(params ...string) *Line {
	line := &Line{Params: params}
	c.Children = append(c.Children, line)
	return line
}

// ChildChunk returns the first direct child chunk with the given name, or nil.
func (c *Chunk) ChildChunk(name string) *Chunk {
	for _, n := range c.Children {
		if ch, ok := n.(*Chunk); ok && ch.Name == name {
			return ch
		}
	}
	return nil
}

// ChildChunks returns all direct child chunks with the given name.
func (c *Chunk) ChildChunks(name string) []*Chunk {
	var out []*Chunk
	for _, n := range c.Children {
		if ch, ok := n.(*Chunk); ok && ch.Name == name {
			out = append(out, ch)
		}
	}
	return out
}

// FindChunk returns the first chunk with the given name anywhere below c
// (depth first), or nil.
func (c *Chunk) FindChunk(name string) *Chunk {
	for _, n := range c.Children {
		ch, ok := n.(*Chunk)
		if !ok {
			continue
		}
		if ch.Name == name {
			return ch
		}
		if found := ch.FindChunk(name); found != nil {
			return found
		}
	}
	return nil
}

// ChildLine returns the first direct child line with the given tag, or nil.
func (c *Chunk) ChildLine(tag string) *Line {
	for _, n := range c.Children {
		if l, ok := n.(*Line); ok && l.Tag() == tag {
			return l
		}
	}
	return nil
}

// ChildLines returns all direct child lines with the given tag.
func (c *Chunk) ChildLines(tag string) []*Line {
	var out []*Line
	for _, n := range c.Children {
		if l, ok := n.(*Line); ok && l.Tag() == tag {
			out = append(out, l)
		}
	}
	return out
}

// Lines returns all direct child lines.
func (c *Chunk) Lines() []*Line {
	var out []*Line
	for _, n := range c.Children {
		if l, ok := n.(*Line); ok {
			out = append(out, l)
		}
	}
	return out
}

// Param returns the chunk's own declaration parameter at index i, or def.
func (c *Chunk) Param(i int, def string) string {
	return paramAt(c.Params, i, def)
}

// IntParam returns the declaration parameter at index i coerced to int, or def.
func (c *Chunk) IntParam(i int, def int) int {
	return coerceInt(paramAt(c.Params, i, ""), def)
}

// FloatParam returns the declaration parameter at index i coerced to
// float64, or def.
func (c *Chunk) FloatParam(i int, def float64) float64 {
	return coerceFloat(paramAt(c.Params, i, ""), def)
}

func paramAt(params []string, i int, def string) string {
	if i < 0 || i >= len(params) {
		return def
	}
	return params[i]
}

func coerceInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Some writers emit integral values as floats.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return def
		}
		return int(f)
	}
	return v
}

func coerceFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// FormatError reports malformed chunk text. Line is 1-based; 0 means the
// location is unknown.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("rpp: line %d: %s", e.Line, e.Msg)
	}
	return "rpp: " + e.Msg
}
