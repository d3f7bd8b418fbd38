// Package rcache implements the segmented, content-addressed on-disk JSON
// store the metadata provider reads and writes through. It assumes a single
// writer per cache root; no locking is performed.
package rcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Cache is a directory-backed key/value store keyed by a sequence of
// string segments.
type Cache struct {
	root string
}

// New returns a Cache rooted at dir. The directory is not created until the
// first write.
func New(dir string) *Cache {
	return &Cache{root: dir}
}

// Ensure creates the cache root directory if it does not already exist.
func (c *Cache) Ensure() error {
	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return errors.Wrapf(err, "creating cache root %s", c.root)
	}
	return nil
}

func sanitize(segment string) string {
	return strings.ReplaceAll(segment, "/", "__")
}

func (c *Cache) path(segments ...string) string {
	safe := make([]string, len(segments))
	for i, s := range segments {
		safe[i] = sanitize(s)
	}
	return filepath.Join(append([]string{c.root}, safe...)...)
}

// Exists reports whether a value is stored at segments.
func (c *Cache) Exists(segments ...string) bool {
	_, err := os.Stat(c.path(segments...))
	return err == nil
}

// Load reads the JSON value stored at segments into out. It returns
// (false, nil) if nothing is stored there.
func (c *Cache) Load(out interface{}, segments ...string) (bool, error) {
	path := c.path(segments...)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "reading cache entry %s", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, errors.Wrapf(err, "parsing cache entry %s", path)
	}
	return true, nil
}

// Store writes value as pretty-printed, key-sorted JSON at segments. The
// write is atomic: the payload is written to a temp file in the same
// directory, then renamed into place.
func (c *Cache) Store(value interface{}, segments ...string) error {
	path := c.path(segments...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating cache directory for %s", path)
	}

	data, err := marshalSorted(value)
	if err != nil {
		return errors.Wrapf(err, "encoding cache entry %s", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "creating temp file for %s", path)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "writing cache entry %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "closing temp file for %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "renaming temp file into %s", path)
	}
	return nil
}

// Drop removes the entry at segments, if any.
func (c *Cache) Drop(segments ...string) error {
	path := c.path(segments...)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing cache entry %s", path)
	}
	return nil
}

// marshalSorted produces ASCII-escaped, 2-space-indented, key-sorted JSON.
// encoding/json already sorts map keys; struct field order is preserved,
// which matches the field order declared on the caller's value.
func marshalSorted(value interface{}) ([]byte, error) {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(true)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	out := strings.TrimRight(buf.String(), "\n")
	var ascii strings.Builder
	for _, r := range out {
		switch {
		case r < utf8.RuneSelf:
			ascii.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&ascii, `\u%04x\u%04x`, hi, lo)
		default:
			fmt.Fprintf(&ascii, `\u%04x`, r)
		}
	}
	return []byte(ascii.String()), nil
}
