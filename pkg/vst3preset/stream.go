package vst3preset

import (
	"encoding/binary"
	"fmt"
	"io"
)

// reader wraps an io.Reader with the bounded little-endian primitives the
// preset layout needs. Every failure is reported as a FormatError.
type reader struct {
	r io.Reader
}

func (r *reader) bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, &FormatError{Msg: fmt.Sprintf("truncated preset: wanted %d bytes: %v", n, err)}
	}
	return buf, nil
}

func (r *reader) tag() (string, error) {
	b, err := r.bytes(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ascii reads a fixed-length ASCII field, rejecting non-printable bytes.
func (r *reader) ascii(n int) (string, error) {
	b, err := r.bytes(n)
	if err != nil {
		return "", err
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return "", &FormatError{Msg: fmt.Sprintf("non-ASCII byte 0x%02X in identifier field", c)}
		}
	}
	return string(b), nil
}

type writer struct {
	w io.Writer
}

func (w *writer) bytes(b []byte) error {
	_, err := w.w.Write(b)
	return err
}

func (w *writer) tag(s string) error {
	return w.bytes([]byte(s))
}

func (w *writer) uint32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return w.bytes(b[:])
}

func (w *writer) uint64(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return w.bytes(b[:])
}
