package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblia-online/biblia/internal/importer"
)

const testConfig = `
Title = "Bíblia Online"

[DB]
GormEngine = "sqlite"

[Log]
LogLevel = "error"
AppName = "biblia"
ServiceName = "biblia-test"

[Webserver]
Port = 8080
URL = "http://localhost:8080"

[Scripture]
DefaultBibleID = "d63894c8d9a7a503-01"
`

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.toml"), []byte(testConfig), 0o600))

	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		dumpJSON = false
		importBook = ""
	})

	err := rootCmd.Execute()

	return out.String(), err
}

func TestConfigDump(t *testing.T) {
	dir := writeConfig(t)

	out, err := run(t, "config", "dump", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "GormEngine")
	assert.Contains(t, out, "sqlite")

	out, err = run(t, "config", "dump", "--json", "--config", dir)
	require.NoError(t, err)

	var dumped map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &dumped))
	assert.Equal(t, "Bíblia Online", dumped["Title"])
}

func TestConfigDumpMissingFile(t *testing.T) {
	_, err := run(t, "config", "dump", "--config", t.TempDir())
	require.Error(t, err)
}

func TestImportChaptersRequiresBook(t *testing.T) {
	_, err := run(t, "import", "chapters", "--config", writeConfig(t))
	require.ErrorIs(t, err, importer.ErrMissingBookID)
}
