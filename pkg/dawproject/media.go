package dawproject

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ErrNotFound reports a missing media or device-state entry.
var ErrNotFound = errors.New("media entry not found")

// MediaAccess resolves the opaque file identifiers a project references.
// Implementations own at most one archive handle and release it on Close;
// Close is safe to call more than once.
type MediaAccess interface {
	// Stream opens the entry with the given id. Fails with ErrNotFound
	// when the entry exists nowhere.
	Stream(id string) (io.ReadCloser, error)
	// Add registers an outgoing entry backed by a local file.
	Add(id, localPath string)
	// All returns the known outgoing ids in registration order.
	All() []string
	// Close releases any underlying archive handle.
	Close() error
}

// FolderMedia resolves ids against a base directory first and falls back to
// entries of a sibling archive when one is configured. It serves the text
// project format, whose media lives beside the project file.
type FolderMedia struct {
	dir     string
	archive *zip.ReadCloser
	ids     []string
	local   map[string]string
}

// NewFolderMedia creates a FolderMedia over dir. archivePath may be empty;
// otherwise it names a container consulted when a file is absent from dir.
func NewFolderMedia(dir, archivePath string) (*FolderMedia, error) {
	m := &FolderMedia{dir: dir, local: map[string]string{}}
	if archivePath != "" {
		zr, err := zip.OpenReader(archivePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open media archive %s: %w", archivePath, err)
		}
		m.archive = zr
	}
	return m, nil
}

// Stream implements MediaAccess.
func (m *FolderMedia) Stream(id string) (io.ReadCloser, error) {
	candidates := []string{id}
	if p, ok := m.local[id]; ok {
		candidates = append(candidates, p)
	}
	for _, c := range candidates {
		p := c
		if !filepath.IsAbs(p) {
			p = filepath.Join(m.dir, filepath.FromSlash(c))
		}
		if f, err := os.Open(p); err == nil {
			return f, nil
		}
	}
	if m.archive != nil {
		for _, entry := range m.archive.File {
			if entry.Name == id {
				return entry.Open()
			}
		}
	}
	return nil, fmt.Errorf("media %s: %w", id, ErrNotFound)
}

// Add implements MediaAccess.
func (m *FolderMedia) Add(id, localPath string) {
	if _, known := m.local[id]; !known {
		m.ids = append(m.ids, id)
	}
	m.local[id] = localPath
}

// All implements MediaAccess.
func (m *FolderMedia) All() []string {
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out
}

// LocalPath returns the registered backing file for an id, or "".
func (m *FolderMedia) LocalPath(id string) string {
	return m.local[id]
}

// Close implements MediaAccess.
func (m *FolderMedia) Close() error {
	if m.archive == nil {
		return nil
	}
	zr := m.archive
	m.archive = nil
	return zr.Close()
}

// ArchiveMedia resolves ids purely against the entries of one container.
type ArchiveMedia struct {
	path    string
	archive *zip.ReadCloser
	ids     []string
	local   map[string]string
}

// NewArchiveMedia opens the container at path.
func NewArchiveMedia(path string) (*ArchiveMedia, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %s: %w", path, err)
	}
	return &ArchiveMedia{path: path, archive: zr, local: map[string]string{}}, nil
}

// Stream implements MediaAccess.
func (m *ArchiveMedia) Stream(id string) (io.ReadCloser, error) {
	if m.archive == nil {
		return nil, fmt.Errorf("media %s: archive already closed: %w", id, ErrNotFound)
	}
	for _, entry := range m.archive.File {
		if entry.Name == id {
			return entry.Open()
		}
	}
	return nil, fmt.Errorf("media %s in %s: %w", id, m.path, ErrNotFound)
}

// Add implements MediaAccess.
func (m *ArchiveMedia) Add(id, localPath string) {
	if _, known := m.local[id]; !known {
		m.ids = append(m.ids, id)
	}
	m.local[id] = localPath
}

// All implements MediaAccess. When nothing was registered it lists the
// archive's non-XML entries instead, sorted for determinism.
func (m *ArchiveMedia) All() []string {
	if len(m.ids) > 0 {
		out := make([]string, len(m.ids))
		copy(out, m.ids)
		return out
	}
	if m.archive == nil {
		return nil
	}
	var out []string
	for _, entry := range m.archive.File {
		if entry.Name == projectEntry || entry.Name == metadataEntry {
			continue
		}
		out = append(out, entry.Name)
	}
	sort.Strings(out)
	return out
}

// Close implements MediaAccess.
func (m *ArchiveMedia) Close() error {
	if m.archive == nil {
		return nil
	}
	zr := m.archive
	m.archive = nil
	return zr.Close()
}
