package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/intl-extract/internal/messages"
)

// Test Plan for extract command:
// - Extracts a project and writes sidecars mirroring the source tree
// - Prints diagnostics as file:line:col: severity: [Code] message
// - Exits with ErrExtractionFailed when a unit fails, other units still written
// - Flags override the config file
// - --out writes the aggregate of the run
// - --incremental creates the manifest and reuses unchanged files
// - Explicit path arguments restrict the run
// - --quiet only prints errors
// - Invalid configuration is reported
// - version prints build information

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

// execute runs the command line and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func readMessages(t *testing.T, path string) []messages.Descriptor {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var ds []messages.Descriptor
	require.NoError(t, json.Unmarshal(data, &ds))
	return ds
}

const headerSource = `import {FormattedMessage} from 'react-intl';

export const Header = () => (
  <h1>
    <FormattedMessage id="header.title" defaultMessage="Welcome" description="Page title" />
  </h1>
);
`

const duplicateSource = `import {defineMessage} from 'react-intl';

defineMessage({id: 'dup', defaultMessage: 'One'});
defineMessage({id: 'dup', defaultMessage: 'Two'});
`

const warningSource = `import {FormattedMessage} from 'react-intl';

export const A = () => <FormattedMessage id="dropped" />;
`

func TestExtract_WritesSidecars(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"src/components/Header.jsx":     headerSource,
		"src/util.js":                   "export const x = 1;\n",
		"node_modules/lib/index.js":     duplicateSource,
		"src/components/Header.test.md": "ignored",
	})

	stdout, stderr, err := execute(t, "extract", "-C", root, "--messages-dir", "build/messages", "-q")
	require.NoError(t, err, stderr)
	assert.Empty(t, stdout)

	sidecar := filepath.Join(root, "build", "messages", "src", "components", "Header.json")
	ds := readMessages(t, sidecar)
	require.Len(t, ds, 1)
	assert.Equal(t, "header.title", ds[0].ID)
	assert.Equal(t, "Page title", *ds[0].Description)
	assert.Equal(t, "Welcome", *ds[0].DefaultMessage)

	assert.NoFileExists(t, filepath.Join(root, "build", "messages", "src", "util.json"))
	assert.NoDirExists(t, filepath.Join(root, "build", "messages", "node_modules"))
}

func TestExtract_ReportsFailures(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"a.jsx":  headerSource,
		"dup.js": duplicateSource,
		"w.jsx":  warningSource,
	})

	stdout, stderr, err := execute(t, "extract", "-C", root, "--messages-dir", "out")
	require.ErrorIs(t, err, ErrExtractionFailed)

	assert.Contains(t, stderr, `dup.js:4:1: error: [DuplicateId] Duplicate message id: "dup"`)
	assert.Contains(t, stderr, "w.jsx:3:24: warning: [MissingDefaultMessage]")
	assert.Contains(t, stdout, "1 of 3 files failed")

	assert.FileExists(t, filepath.Join(root, "out", "a.json"))
	assert.NoFileExists(t, filepath.Join(root, "out", "dup.json"))
}

func TestExtract_FlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		".intl-extract.yml": "module_source_name: other-intl\nmessages_dir: from-config\n",
		"a.jsx": `import {FormattedMessage} from 'my-intl';
export const A = () => <FormattedMessage id="custom" defaultMessage="Custom" />;
`,
	})

	_, stderr, err := execute(t, "extract", "-C", root, "-q", "--module-source-name", "my-intl")
	require.NoError(t, err, stderr)

	ds := readMessages(t, filepath.Join(root, "from-config", "a.json"))
	require.Len(t, ds, 1)
	assert.Equal(t, "custom", ds[0].ID)
}

func TestExtract_ExplicitConfigFile(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"conf/extract.yml": "messages_dir: explicit\n",
		"a.jsx":            headerSource,
	})

	_, stderr, err := execute(t, "extract", "-C", root, "-q", "--config", filepath.Join(root, "conf", "extract.yml"))
	require.NoError(t, err, stderr)
	assert.FileExists(t, filepath.Join(root, "explicit", "a.json"))
}

func TestExtract_AggregateOutput(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"b.jsx": headerSource,
		"a.js": `import {defineMessage} from 'react-intl';
defineMessage({id: 'first', defaultMessage: 'First'});
`,
	})

	_, stderr, err := execute(t, "extract", "-C", root, "-q", "--out", "all.json")
	require.NoError(t, err, stderr)

	ds := readMessages(t, filepath.Join(root, "all.json"))
	require.Len(t, ds, 2)
	assert.Equal(t, "first", ds[0].ID)
	assert.Equal(t, "header.title", ds[1].ID)
}

func TestExtract_Incremental(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{"a.jsx": headerSource})

	stdout, stderr, err := execute(t, "extract", "-C", root, "--incremental")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "Extracted 1 messages from 1 files")
	assert.FileExists(t, filepath.Join(root, ".intl-extract", "manifest.db"))

	stdout, stderr, err = execute(t, "extract", "-C", root, "--incremental")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "1 reused")
}

func TestExtract_ExplicitPaths(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"src/a.jsx": headerSource,
		"lib/b.js":  duplicateSource,
	})

	_, stderr, err := execute(t, "extract", "-C", root, "-q", "--messages-dir", "out", "src")
	require.NoError(t, err, stderr)
	assert.FileExists(t, filepath.Join(root, "out", "src", "a.json"))
}

func TestExtract_QuietStillPrintsErrors(t *testing.T) {
	t.Parallel()

	root := writeProject(t, map[string]string{
		"dup.js": duplicateSource,
		"w.jsx":  warningSource,
	})

	stdout, stderr, err := execute(t, "extract", "-C", root, "-q")
	require.ErrorIs(t, err, ErrExtractionFailed)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "[DuplicateId]")
	assert.NotContains(t, stderr, "[MissingDefaultMessage]")
}

func TestExtract_InvalidConfiguration(t *testing.T) {
	t.Parallel()

	root := writeProject(t, nil)

	_, _, err := execute(t, "extract", "-C", root, "--concurrency", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency must be at least 1")
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "intl-extract "+Version)
	assert.Contains(t, stdout, "Git commit: "+GitCommit)
}
