// Package charset translates text between UTF-8 and the code page a fiscal
// device prints with.
package charset

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// UTF8 is the name of the pass-through codec.
const UTF8 = "utf-8"

// Codec encodes text for a device and decodes device text back to UTF-8.
type Codec interface {
	// Name returns the canonical charset name.
	Name() string

	// Encode converts s to the device code page. It fails if a rune has no
	// representation in the code page.
	Encode(s string) ([]byte, error)

	// Decode converts device bytes back to UTF-8.
	Decode(b []byte) (string, error)
}

// Common fiscal printer code pages. Anything else is looked up in the IANA
// registry.
var known = map[string]encoding.Encoding{
	"cp850":        charmap.CodePage850,
	"ibm850":       charmap.CodePage850,
	"cp437":        charmap.CodePage437,
	"ibm437":       charmap.CodePage437,
	"cp860":        charmap.CodePage860,
	"ibm860":       charmap.CodePage860,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// New returns the codec for the named charset.
func New(name string) (Codec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "":
		return nil, fmt.Errorf("charset name is required")
	case "utf-8", "utf8":
		return utf8Codec{}, nil
	}

	if enc, ok := known[key]; ok {
		return &codec{name: key, enc: enc}, nil
	}

	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", name)
	}
	return &codec{name: key, enc: enc}, nil
}

// Supported reports whether New accepts name.
func Supported(name string) bool {
	_, err := New(name)
	return err == nil
}

type codec struct {
	name string
	enc  encoding.Encoding
}

func (c *codec) Name() string {
	return c.name
}

func (c *codec) Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("text is not valid UTF-8")
	}
	b, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("cannot encode %q as %s: %w", s, c.name, err)
	}
	return b, nil
}

func (c *codec) Decode(b []byte) (string, error) {
	s, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("cannot decode %s text: %w", c.name, err)
	}
	return string(s), nil
}

type utf8Codec struct{}

func (utf8Codec) Name() string {
	return UTF8
}

func (utf8Codec) Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("text is not valid UTF-8")
	}
	return []byte(s), nil
}

func (utf8Codec) Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("text is not valid UTF-8")
	}
	return string(b), nil
}
