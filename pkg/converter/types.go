// Package converter translates projects between the Reaper text format and
// the dawproject interchange container.
package converter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/git-moss/ProjectConverter-sub001/pkg/dawproject"
)

// Format represents a project file format
type Format string

const (
	FormatReaper     Format = "reaper"
	FormatDawProject Format = "dawproject"
	FormatUnknown    Format = "unknown"
)

// DetectFormat detects the format of a file based on its extension
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".rpp":
		return FormatReaper
	case "." + dawproject.FileExtension:
		return FormatDawProject
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// dawproject containers are ZIP archives
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return FormatDawProject
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("<REAPER_PROJECT")) {
		return FormatReaper
	}

	return FormatUnknown
}

// Notifier receives progress and error events from a conversion. It is an
// injected dependency so converters stay free of ambient state.
type Notifier interface {
	Log(format string, args ...any)
	LogError(err error, format string, args ...any)
}

// ConsoleNotifier writes events to stdout/stderr.
type ConsoleNotifier struct{}

// Log implements Notifier.
func (ConsoleNotifier) Log(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// LogError implements Notifier.
func (ConsoleNotifier) LogError(err error, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+": %v\n", append(args, err)...)
}

// NopNotifier discards all events.
type NopNotifier struct{}

// Log implements Notifier.
func (NopNotifier) Log(string, ...any) {}

// LogError implements Notifier.
func (NopNotifier) LogError(error, string, ...any) {}

// Container is one conversion's unit of work: the project graph, its
// metadata, and the media handle resolving referenced files. The media
// handle is borrowed; Close releases it.
type Container struct {
	Name     string
	Metadata *dawproject.MetaData
	Project  *dawproject.Project
	Media    dawproject.MediaAccess

	// Embedded collects generated payloads (device states, copied samples)
	// destined for the output container.
	Embedded []dawproject.EmbeddedFile
}

// Close releases the media handle. Safe to call on every exit path.
func (c *Container) Close() error {
	if c.Media == nil {
		return nil
	}
	return c.Media.Close()
}

// AddEmbedded registers generated content for the output container and
// returns its id.
func (c *Container) AddEmbedded(id string, data []byte) string {
	c.Embedded = append(c.Embedded, dawproject.EmbeddedFile{ID: id, Data: data})
	return id
}
