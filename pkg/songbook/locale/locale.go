// Package locale holds the per-locale chord scales and speaker labels.
package locale

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/himanishpuri/SongBook/pkg/songbook/chords"
	"github.com/himanishpuri/SongBook/pkg/songbook/sheet"
)

//go:embed locales.yaml
var builtin []byte

var (
	ErrMissingScale  = errors.New("missing chord scale")
	ErrMissingRole   = errors.New("missing role label")
	ErrCombinedWidth = errors.New("combined psalmist/assembly label has wrong width")
)

// ConfigError reports a problem with one field of a locale entry.
type ConfigError struct {
	Locale string
	Field  string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("locale %s: %s: %v", e.Locale, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Entry is the configuration of a single locale.
type Entry struct {
	Scale string      `yaml:"scale" json:"scale"`
	Roles sheet.Roles `yaml:"roles" json:"roles"`
}

// Table maps locale names to their entries.
type Table struct {
	entries map[string]Entry
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the table compiled into the binary.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(builtin)
		if err != nil {
			panic(fmt.Sprintf("locale: embedded table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Parse decodes a YAML locale table.
func Parse(data []byte) (*Table, error) {
	entries := make(map[string]Entry)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse locale table: %w", err)
	}
	return &Table{entries: entries}, nil
}

// LoadFile reads a YAML locale table from disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale table: %w", err)
	}
	return Parse(data)
}

// Merge returns a new table with the entries of other layered over t.
// Non-empty fields of other win; empty fields keep the value from t.
func (t *Table) Merge(other *Table) *Table {
	merged := make(map[string]Entry, len(t.entries))
	for name, e := range t.entries {
		merged[name] = e
	}
	if other == nil {
		return &Table{entries: merged}
	}
	for name, o := range other.entries {
		e := merged[name]
		if o.Scale != "" {
			e.Scale = o.Scale
		}
		e.Roles = mergeRoles(e.Roles, o.Roles)
		merged[name] = e
	}
	return &Table{entries: merged}
}

func mergeRoles(base, over sheet.Roles) sheet.Roles {
	pick := func(a, b string) string {
		if b != "" {
			return b
		}
		return a
	}
	return sheet.Roles{
		Psalmist: pick(base.Psalmist, over.Psalmist),
		Assembly: pick(base.Assembly, over.Assembly),
		Priest:   pick(base.Priest, over.Priest),
		Men:      pick(base.Men, over.Men),
		Women:    pick(base.Women, over.Women),
		Children: pick(base.Children, over.Children),
	}
}

// Base returns the language part of a locale: "pt-BR" -> "pt".
func Base(locale string) string {
	base, _, _ := strings.Cut(locale, "-")
	return base
}

// Resolve returns the entry for locale, falling back to its base language.
// The returned name is the key that matched.
func (t *Table) Resolve(locale string) (Entry, string, bool) {
	if e, ok := t.entries[locale]; ok {
		return e, locale, true
	}
	base := Base(locale)
	if e, ok := t.entries[base]; ok {
		return e, base, true
	}
	return Entry{}, "", false
}

// Scale returns the chord scale of locale. Unknown locales get an empty
// scale, which disables chord detection.
func (t *Table) Scale(locale string) chords.Scale {
	e, _, _ := t.Resolve(locale)
	return chords.ParseScale(e.Scale)
}

// Roles returns the speaker labels of locale.
func (t *Table) Roles(locale string) sheet.Roles {
	e, _, _ := t.Resolve(locale)
	return e.Roles
}

// Classifier returns a line classifier configured for locale.
func (t *Table) Classifier(locale string) *sheet.Classifier {
	return sheet.NewClassifier(t.Scale(locale), t.Roles(locale))
}

// Locales returns the configured locale names, sorted.
func (t *Table) Locales() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every entry and returns one error per problem found.
func (t *Table) Validate() []error {
	var errs []error
	for _, name := range t.Locales() {
		errs = append(errs, validateEntry(name, t.entries[name])...)
	}
	return errs
}

func validateEntry(name string, e Entry) []error {
	var errs []error
	if e.Scale == "" {
		errs = append(errs, &ConfigError{Locale: name, Field: "scale", Err: ErrMissingScale})
	} else if err := chords.ParseScale(e.Scale).Validate(); err != nil {
		errs = append(errs, &ConfigError{Locale: name, Field: "scale", Err: err})
	}

	roles := []struct {
		field, label string
	}{
		{"roles.psalmist", e.Roles.Psalmist},
		{"roles.assembly", e.Roles.Assembly},
		{"roles.priest", e.Roles.Priest},
		{"roles.men", e.Roles.Men},
		{"roles.women", e.Roles.Women},
		{"roles.children", e.Roles.Children},
	}
	for _, r := range roles {
		if r.label == "" {
			errs = append(errs, &ConfigError{Locale: name, Field: r.field, Err: ErrMissingRole})
		}
	}

	if combined := e.Roles.Combined(); combined != "" && utf8.RuneCountInString(combined) != sheet.CombinedWidth {
		errs = append(errs, &ConfigError{
			Locale: name,
			Field:  "roles",
			Err:    fmt.Errorf("%w: %q", ErrCombinedWidth, combined),
		})
	}
	return errs
}
