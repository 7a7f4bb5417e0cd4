package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/crmdex/internal/config"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: finding config command
	configCmd, _, err := cmd.Find([]string{"config"})
	require.NoError(t, err)

	// Then: init, show, path are registered
	names := make(map[string]bool)
	for _, sc := range configCmd.Commands() {
		names[sc.Name()] = true
	}
	assert.True(t, names["init"], "should have init command")
	assert.True(t, names["show"], "should have show command")
	assert.True(t, names["path"], "should have path command")
}

func TestConfigInit_CreatesUserConfig(t *testing.T) {
	// Given: empty config home
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "init"})

	// When: running config init
	require.NoError(t, cmd.Execute())

	// Then: the user config file exists and parses as defaults
	path := filepath.Join(configHome, "crmdex", "config.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, config.NewConfig().Search.DefaultK, cfg.Search.DefaultK)
	assert.Contains(t, buf.String(), "Created user configuration")
}

func TestConfigInit_RefusesOverwriteWithoutForce(t *testing.T) {
	// Given: an existing user config with a customized setting
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	path := filepath.Join(configHome, "crmdex", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("search:\n  default_k: 42\n"), 0o644))

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "init"})

	// When: running config init without --force
	require.NoError(t, cmd.Execute())

	// Then: the existing file is untouched
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "default_k: 42")
	assert.Contains(t, buf.String(), "already exists")
}

func TestConfigInit_ForceOverwrites(t *testing.T) {
	// Given: an existing user config
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	path := filepath.Join(configHome, "crmdex", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("search:\n  default_k: 42\n"), 0o644))

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"config", "init", "--force"})

	// When: running config init --force
	require.NoError(t, cmd.Execute())

	// Then: the file is reset to defaults
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, config.NewConfig().Search.DefaultK, cfg.Search.DefaultK)
}

func TestConfigPath_OutputsUserConfigPath(t *testing.T) {
	// Given: isolated config home
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "path"})

	// When: running config path
	require.NoError(t, cmd.Execute())

	// Then: output is the user config location
	assert.Contains(t, buf.String(), filepath.Join(configHome, "crmdex", "config.yaml"))
}

func TestConfigShow_MergesProjectOverride(t *testing.T) {
	// Given: a project config overriding default_k
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	tmpDir := t.TempDir()
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(oldDir) })
	require.NoError(t, os.WriteFile(".crmdex.yaml", []byte("search:\n  default_k: 7\n"), 0o644))

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"config", "show"})

	// When: running config show
	require.NoError(t, cmd.Execute())

	// Then: the merged view reflects the override
	assert.Contains(t, buf.String(), "default_k: 7")
}
