package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOptionsFile_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sub", "config.yaml")

	require.NoError(t, SetOptionsFile(configPath, "/srv/options.yaml"))

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())
	require.Equal(t, "/srv/options.yaml", v.GetString("form.options_file"))
}

func TestSetOptionsFile_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# my settings
form:
  reset_delay: 5s # slower
ui:
  markdown_style: light
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o644))

	require.NoError(t, SetOptionsFile(configPath, "options.yaml"))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# my settings")
	assert.Contains(t, content, "reset_delay: 5s # slower")
	assert.Contains(t, content, "markdown_style: light")
	assert.Contains(t, content, "options_file: options.yaml")
}

func TestSetOptionsFile_ReplacesExisting(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))
	require.NoError(t, SetOptionsFile(configPath, "a.yaml"))
	require.NoError(t, SetOptionsFile(configPath, "b.yaml"))

	cfg := loadConfigFromYAML(t, mustRead(t, configPath))
	require.Equal(t, "b.yaml", cfg.Form.OptionsFile)
	require.Equal(t, Defaults().Form.ResetDelay, cfg.Form.ResetDelay)
}

func TestSetValue_RejectsScalarSection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("form: nope\n"), 0o644))

	err := SetOptionsFile(configPath, "x.yaml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a section")
}

func TestSetValue_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, SetOptionsFile(configPath, "x.yaml"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
