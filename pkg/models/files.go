package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LocaleFile names the song file of one locale.
type LocaleFile struct {
	Locale string
	File   string
}

// Files lists song files per locale in declaration order. The first entry
// is the default locale of the song.
type Files []LocaleFile

// Get returns the file of locale.
func (f Files) Get(locale string) (string, bool) {
	for _, lf := range f {
		if lf.Locale == locale {
			return lf.File, true
		}
	}
	return "", false
}

// Default returns the first declared entry.
func (f Files) Default() (LocaleFile, bool) {
	if len(f) == 0 {
		return LocaleFile{}, false
	}
	return f[0], true
}

// With returns a copy of f with locale set to file. An existing entry keeps
// its position; a new one is appended.
func (f Files) With(locale, file string) Files {
	out := make(Files, len(f), len(f)+1)
	copy(out, f)
	for i := range out {
		if out[i].Locale == locale {
			out[i].File = file
			return out
		}
	}
	return append(out, LocaleFile{Locale: locale, File: file})
}

// MarshalJSON encodes the files as an object, keeping declaration order.
func (f Files) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lf := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(lf.Locale)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(lf.File)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of locale to file name, keeping the order
// in which the locales are declared.
func (f *Files) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("files: expected object, got %v", tok)
	}

	var out Files
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		locale, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("files: unexpected key %v", keyTok)
		}
		var file string
		if err := dec.Decode(&file); err != nil {
			return fmt.Errorf("files: locale %s: %w", locale, err)
		}
		out = out.With(locale, file)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}
