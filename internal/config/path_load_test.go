package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range apiKeyEnv {
		t.Setenv(name, "")
	}
}

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.yaml"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "livescribe", "config.jsonc"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "livescribe", "config.jsonc"), resolved)
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "missing.jsonc")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadExistingYAMLFile(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recognition:\n  backend: grpc\n  endpoint: 127.0.0.1:50051\n"), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, BackendGRPC, loaded.Config.Recognition.Backend)
	require.Equal(t, "127.0.0.1:50051", loaded.Config.Recognition.Endpoint)
}

func TestLoadParseErrorIncludesPath(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"audio": }`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), path)
}

func TestLoadReadsAPIKeyFromDotEnv(t *testing.T) {
	clearKeyEnv(t)
	require.NoError(t, os.Unsetenv("LIVESCRIBE_OPENAI_API_KEY"))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LIVESCRIBE_OPENAI_API_KEY=sk-from-dotenv\n"), 0o600))

	loaded, err := Load(filepath.Join(dir, "config.jsonc"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, ".env"), loaded.EnvFile)
	require.Equal(t, "sk-from-dotenv", loaded.Config.OpenAI.APIKey)
}

func TestLoadFileKeyWinsOverEnvironment(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	path := filepath.Join(t.TempDir(), "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"openai": {"api_key": "sk-file"}}`), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "sk-file", loaded.Config.OpenAI.APIKey)
}

func TestLoadEnvironmentKeyFillsDefault(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	loaded, err := Load(filepath.Join(t.TempDir(), "missing.jsonc"))
	require.NoError(t, err)
	require.Equal(t, "sk-env", loaded.Config.OpenAI.APIKey)
}
