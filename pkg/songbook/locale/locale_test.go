package locale

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/himanishpuri/SongBook/pkg/songbook/chords"
)

func TestDefaultTableIsValid(t *testing.T) {
	table := Default()

	want := []string{"de", "en", "es", "fr", "it", "pt"}
	if diff := cmp.Diff(want, table.Locales()); diff != "" {
		t.Errorf("Locales mismatch (-want +got):\n%s", diff)
	}

	for _, err := range table.Validate() {
		t.Errorf("Unexpected diagnostic: %v", err)
	}
}

func TestScaleLookup(t *testing.T) {
	table := Default()

	es := table.Scale("es")
	if len(es) != chords.Steps || es[0] != "Do" || es[3] != "Mib" {
		t.Errorf("Unexpected Spanish scale: %v", es)
	}

	if got := table.Scale("pt-BR"); got[0] != "Do" {
		t.Errorf("Expected base-language fallback for pt-BR, got %v", got)
	}

	if got := table.Scale("xx"); len(got) != 0 {
		t.Errorf("Expected empty scale for unknown locale, got %v", got)
	}
	if got := table.Scale(""); len(got) != 0 {
		t.Errorf("Expected empty scale for empty locale, got %v", got)
	}
}

func TestResolvePrefersExactMatch(t *testing.T) {
	table, err := Parse([]byte(`
pt:
  scale: "Do Do# Re Mib Mi Fa Fa# Sol Sol# La Sib Si"
pt-BR:
  scale: "C C# D D# E F F# G G# A A# B"
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if _, name, _ := table.Resolve("pt-BR"); name != "pt-BR" {
		t.Errorf("Expected exact match, got %q", name)
	}
	if _, name, _ := table.Resolve("pt-PT"); name != "pt" {
		t.Errorf("Expected base match, got %q", name)
	}
	if _, _, ok := table.Resolve("ja"); ok {
		t.Error("Expected no match for ja")
	}
}

func TestClassifierUsesLocaleRoles(t *testing.T) {
	line := Default().Classifier("es").Classify("S. Aleluya")
	if line.Prefix != "S. " || line.Text != "Aleluya" {
		t.Errorf("Expected Spanish psalmist prefix, got %q / %q", line.Prefix, line.Text)
	}

	// English chords are detected with the English scale only.
	if !Default().Classifier("en").Classify("C G A-").ChordLine {
		t.Error("Expected English chord line")
	}
	if Default().Classifier("es").Classify("C G A-").ChordLine {
		t.Error("English chords must not be detected with the Spanish scale")
	}
}

func TestValidateReportsProblems(t *testing.T) {
	table, err := Parse([]byte(`
xx:
  scale: "C D E"
  roles:
    psalmist: "Ps."
    assembly: "A."
    priest: "P."
    men: "M."
    women: "W."
yy:
  roles:
    psalmist: "S."
    assembly: "A."
    priest: "P."
    men: "M."
    women: "W."
    children: "C."
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	errs := table.Validate()
	if len(errs) != 4 {
		t.Fatalf("Expected 4 diagnostics, got %d: %v", len(errs), errs)
	}

	checks := []struct {
		locale, field string
		err           error
	}{
		{"xx", "scale", chords.ErrScaleSize},
		{"xx", "roles.children", ErrMissingRole},
		{"xx", "roles", ErrCombinedWidth},
		{"yy", "scale", ErrMissingScale},
	}
	for i, c := range checks {
		var ce *ConfigError
		if !errors.As(errs[i], &ce) {
			t.Fatalf("diagnostic %d is not a ConfigError: %v", i, errs[i])
		}
		if ce.Locale != c.locale || ce.Field != c.field || !errors.Is(errs[i], c.err) {
			t.Errorf("diagnostic %d: expected %s/%s %v, got %v", i, c.locale, c.field, c.err, errs[i])
		}
	}
}

func TestMergeOverridesFields(t *testing.T) {
	over, err := Parse([]byte(`
es:
  roles:
    psalmist: "Sal."
la:
  scale: "Do Do# Re Mib Mi Fa Fa# Sol Sol# La Sib Si"
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	merged := Default().Merge(over)

	roles := merged.Roles("es")
	if roles.Psalmist != "Sal." || roles.Assembly != "A." {
		t.Errorf("Expected field-wise merge, got %+v", roles)
	}
	if merged.Scale("es")[0] != "Do" {
		t.Error("Merge dropped the Spanish scale")
	}
	if len(merged.Scale("la")) != chords.Steps {
		t.Error("Merge did not add new locale")
	}
	if Default().Roles("es").Psalmist != "S." {
		t.Error("Merge modified the receiver")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	if err := os.WriteFile(path, []byte("ca:\n  scale: \"Do Do# Re Mib Mi Fa Fa# Sol Sol# La Sib Si\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write table: %v", err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(table.Scale("ca")) != chords.Steps {
		t.Errorf("Expected Catalan scale, got %v", table.Scale("ca"))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := Parse([]byte("es: [")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestBase(t *testing.T) {
	tests := map[string]string{"pt-BR": "pt", "es": "es", "": "", "zh-Hant-TW": "zh"}
	for in, want := range tests {
		if got := Base(in); got != want {
			t.Errorf("Base(%q) = %q, want %q", in, got, want)
		}
	}
}
