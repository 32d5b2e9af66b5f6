package dawproject

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileExtension is the container's file extension, without the dot.
const FileExtension = "dawproject"

const (
	projectEntry  = "project.xml"
	metadataEntry = "metadata.xml"
)

// EmbeddedFile is content packaged into the container beside the XML. Data
// takes precedence; otherwise LocalPath is copied in.
type EmbeddedFile struct {
	ID        string // entry path inside the container, e.g. "audio/kick.wav"
	Data      []byte
	LocalPath string
}

// ValidationError reports an advisory schema violation. Writers log it and
// continue.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "dawproject: invalid project: " + e.Msg
}

// Save writes the container to path atomically: the ZIP is assembled in a
// temporary sibling file which is renamed over the destination only after a
// complete, successful write.
func Save(project *Project, meta *MetaData, files []EmbeddedFile, path string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".dawproject-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary container: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	if err = writeXMLEntry(zw, projectEntry, project); err != nil {
		return err
	}
	if err = writeXMLEntry(zw, metadataEntry, meta); err != nil {
		return err
	}
	for _, f := range files {
		if err = writeFileEntry(zw, f); err != nil {
			return err
		}
	}
	if err = zw.Close(); err != nil {
		return fmt.Errorf("failed to finish container: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close container: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move container into place: %w", err)
	}
	return nil
}

func writeXMLEntry(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return nil
}

func writeFileEntry(zw *zip.Writer, f EmbeddedFile) error {
	w, err := zw.Create(f.ID)
	if err != nil {
		return fmt.Errorf("failed to create entry %s: %w", f.ID, err)
	}
	if f.Data != nil {
		if _, err := w.Write(f.Data); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", f.ID, err)
		}
		return nil
	}
	src, err := os.Open(f.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.LocalPath, err)
	}
	defer func() { _ = src.Close() }()
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to embed %s: %w", f.LocalPath, err)
	}
	return nil
}

// Load reads the project graph from a container.
func Load(path string) (*Project, error) {
	var project Project
	if err := readXMLEntry(path, projectEntry, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// LoadMetadata reads the metadata record from a container.
func LoadMetadata(path string) (*MetaData, error) {
	var meta MetaData
	if err := readXMLEntry(path, metadataEntry, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func readXMLEntry(path, name string, v any) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open container %s: %w", path, err)
	}
	defer func() { _ = zr.Close() }()

	for _, entry := range zr.File {
		if entry.Name != name {
			continue
		}
		r, err := entry.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s in %s: %w", name, path, err)
		}
		defer func() { _ = r.Close() }()
		if err := xml.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("failed to decode %s: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("container %s has no %s", path, name)
}

// StreamEmbedded opens one embedded entry of a container. The returned
// reader must be closed; closing it also releases the archive handle.
func StreamEmbedded(path, id string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %s: %w", path, err)
	}
	for _, entry := range zr.File {
		if entry.Name == id {
			r, err := entry.Open()
			if err != nil {
				_ = zr.Close()
				return nil, fmt.Errorf("failed to open entry %s: %w", id, err)
			}
			return &archiveEntry{ReadCloser: r, archive: zr}, nil
		}
	}
	_ = zr.Close()
	return nil, fmt.Errorf("entry %s in %s: %w", id, path, ErrNotFound)
}

type archiveEntry struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (a *archiveEntry) Close() error {
	err := a.ReadCloser.Close()
	if cerr := a.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

// Validate performs structural checks on the graph. The result is advisory:
// converters log failures as warnings and keep writing.
func Validate(p *Project) error {
	if p.Version == "" {
		return &ValidationError{Msg: "missing format version"}
	}
	if p.Application.Name == "" {
		return &ValidationError{Msg: "missing application name"}
	}

	ids := map[string]bool{}
	var collect func(t *Track)
	collect = func(t *Track) {
		if t.ID != "" {
			ids[t.ID] = true
		}
		if t.Channel != nil && t.Channel.ID != "" {
			ids[t.Channel.ID] = true
		}
		for _, child := range t.Tracks {
			collect(child)
		}
	}
	for _, t := range p.Structure.Tracks {
		collect(t)
	}

	if p.Arrangement == nil || p.Arrangement.Lanes == nil {
		return nil
	}
	var check func(l *Lanes) error
	check = func(l *Lanes) error {
		if l.Track != "" && !ids[l.Track] {
			return &ValidationError{Msg: fmt.Sprintf("lane references unknown track %q", l.Track)}
		}
		for _, child := range l.Lanes {
			if err := check(child); err != nil {
				return err
			}
		}
		for _, c := range l.Clips {
			if c.Track != "" && !ids[c.Track] {
				return &ValidationError{Msg: fmt.Sprintf("clips reference unknown track %q", c.Track)}
			}
		}
		return nil
	}
	return check(p.Arrangement.Lanes)
}
