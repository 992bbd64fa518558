package f90doc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "!%", config.DocMarker)
	assert.Equal(t, "!%RV", config.ReturnValueMarker)
	assert.True(t, *config.QuoteAwareComments)
	assert.False(t, config.CarryPendingDoc)
	assert.Equal(t, 30, *config.MergeNameBudget)
	assert.Equal(t, "f90doc.types.yaml", config.TypeIndex)
	assert.Equal(t, "yaml", config.Format)

	opts := config.ParserOptions(nil)
	assert.False(t, opts.NaiveComments)
	assert.Equal(t, "!%", opts.DocMarker)
}

func TestParseConfig(t *testing.T) {
	t.Setenv("F90DOC_TEST_DIR", "/tmp/index")
	config, err := ParseConfig([]byte(`
doc_marker: "!>"
return_value_marker: "!>RV"
quote_aware_comments: false
carry_pending_doc: true
type_index: ${F90DOC_TEST_DIR}/types.yaml
format: json
`))
	assert.NoError(t, err)
	assert.Equal(t, "!>", config.DocMarker)
	assert.Equal(t, "/tmp/index/types.yaml", config.TypeIndex)
	assert.Equal(t, 30, *config.MergeNameBudget)
	opts := config.ParserOptions(nil)
	assert.True(t, opts.NaiveComments)
	assert.True(t, opts.CarryPendingDoc)
	assert.Equal(t, "!>RV", opts.ReturnValueMarker)
}

func TestParseConfigMergeNameBudget(t *testing.T) {
	config, err := ParseConfig([]byte("merge_name_budget: 0\n"))
	assert.NoError(t, err)
	assert.Equal(t, 0, *config.MergeNameBudget)

	config, err = ParseConfig([]byte("merge_name_budget: 12\n"))
	assert.NoError(t, err)
	assert.Equal(t, 12, *config.MergeNameBudget)
}

func TestParseConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"marker without bang", `doc_marker: "%%"`},
		{"short marker", `return_value_marker: "!"`},
		{"blank in marker", `doc_marker: "! %"`},
		{"same markers", "doc_marker: \"!>\"\nreturn_value_marker: \"!>\""},
		{"negative budget", `merge_name_budget: -1`},
		{"unknown format", `format: latex`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.yaml))
			assert.IsError(t, err, ErrConfigValidation)
		})
	}

	_, err := ParseConfig([]byte("unknown_field: 1\n"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrConfigValidation))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	assert.NoError(t, os.WriteFile(".env", []byte("F90DOC_INDEX_DIR=from-dotenv\n"), 0o644))
	path := filepath.Join(dir, "f90doc.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("type_index: $F90DOC_INDEX_DIR/types.yaml\n"), 0o644))

	config, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "from-dotenv/types.yaml", config.TypeIndex)
	os.Unsetenv("F90DOC_INDEX_DIR")

	config, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, DefaultConfig().DocMarker, config.DocMarker)
}
