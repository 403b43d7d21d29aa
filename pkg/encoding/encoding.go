// Package encoding converts exported UTF-8 text to the character set
// expected by the consuming AC3D reader.
package encoding

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for unsupported encoding names.
var ErrUnknownEncoding = errors.New("unknown encoding")

// UTF8 is the default output encoding.
const UTF8 = "utf-8"

// Names lists the supported encoding names.
var Names = []string{UTF8, "latin1", "windows-1252", "euc-kr"}

// lookup returns the x/text encoding for name. UTF-8 maps to nil.
func lookup(name string) (encoding.Encoding, error) {
	switch Normalize(name) {
	case UTF8:
		return nil, nil
	case "latin1":
		return charmap.ISO8859_1, nil
	case "windows-1252":
		return charmap.Windows1252, nil
	case "euc-kr":
		return korean.EUCKR, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// Normalize maps common aliases to their canonical name.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "utf8", "utf-8":
		return UTF8
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return "latin1"
	case "cp1252", "windows-1252":
		return "windows-1252"
	case "euckr", "euc-kr":
		return "euc-kr"
	}
	return name
}

// Validate reports whether name is a supported encoding.
func Validate(name string) error {
	_, err := lookup(name)
	return err
}

// NewWriter wraps w so that UTF-8 text written to it is transcoded to the
// named encoding. Runes the encoding cannot represent are replaced.
// The returned writer must be closed to flush pending bytes.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	enc, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder())), nil
}

// EncodeString transcodes s to the named encoding.
func EncodeString(s, name string) ([]byte, error) {
	enc, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return []byte(s), nil
	}
	out, _, err := transform.Bytes(encoding.ReplaceUnsupported(enc.NewEncoder()), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding to %s: %w", name, err)
	}
	return out, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
