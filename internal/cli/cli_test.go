package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/soyeahso/assistloop/internal/settings"
	"github.com/soyeahso/assistloop/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points ASSISTLOOP_HOME at a temp dir and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("ASSISTLOOP_HOME", home)
	for _, k := range []string{
		"ASSISTLOOP_STORE_DRIVER", "ASSISTLOOP_STORE_DSN", "ASSISTLOOP_GATEWAY_TOKEN",
		"ASSISTLOOP_GATEWAY_PORT", "ASSISTLOOP_GATEWAY_BIND", "ASSISTLOOP_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	return home
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "silent"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func showSettings(t *testing.T, args ...string) settings.WidgetConfig {
	t.Helper()
	out, err := run(t, append([]string{"settings", "show"}, args...)...)
	require.NoError(t, err)
	var cfg settings.WidgetConfig
	require.NoError(t, json.Unmarshal([]byte(out), &cfg), out)
	return cfg
}

func TestVersionCmd(t *testing.T) {
	isolate(t)
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "assistloop")

	out, err = run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)
}

func TestSettingsShow_Defaults(t *testing.T) {
	home := isolate(t)

	assert.Equal(t, settings.WidgetConfig{
		Position:       "right",
		ShowOnAllPages: true,
	}, showSettings(t))
	assert.Equal(t, settings.DefaultWidgetURL, showSettings(t, "--render").WidgetURL)
	assert.FileExists(t, filepath.Join(home, "data", "assistloop.db"))
}

func TestSettingsSet_OnlyChangedFlags(t *testing.T) {
	isolate(t)

	_, err := run(t, "settings", "set", "--agent-id", "abc-123", "--enabled", "--position", "left")
	require.NoError(t, err)

	_, err = run(t, "settings", "set", "--show-on-all-pages=false")
	require.NoError(t, err)

	assert.Equal(t, settings.WidgetConfig{
		AgentID:        "abc-123",
		Enabled:        true,
		Position:       "left",
		ShowOnAllPages: false,
	}, showSettings(t))

	out, err := run(t, "settings", "params")
	require.NoError(t, err)
	assert.Contains(t, out, "assistloop.agent_id")
	assert.Contains(t, out, "assistloop.show_on_all_pages  False")
	assert.NotContains(t, out, "assistloop.widget_url")
}

func TestSettingsSet_ClearAgentID(t *testing.T) {
	isolate(t)

	_, err := run(t, "settings", "set", "--agent-id", "abc-123")
	require.NoError(t, err)
	_, err = run(t, "settings", "set", "--agent-id", "")
	require.NoError(t, err)

	out, err := run(t, "settings", "params")
	require.NoError(t, err)
	assert.NotContains(t, out, "assistloop.agent_id")
}

func TestSettingsSet_NoFlags(t *testing.T) {
	isolate(t)
	_, err := run(t, "settings", "set")
	assert.ErrorContains(t, err, "nothing to set")
}

func TestSettings_InvalidConfig(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("store:\n  driver: mongo\n"), 0o600))

	_, err := run(t, "settings", "show")
	assert.ErrorContains(t, err, "config validation failed")
}

func TestSettingsSet_ValidatePlugin(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("plugins:\n  validate: true\n"), 0o600))

	_, err := run(t, "settings", "set", "--enabled")
	assert.ErrorIs(t, err, settings.ErrRejected)
	assert.ErrorContains(t, err, "agent_id is required")

	_, err = run(t, "settings", "set", "--agent-id", "abc-123", "--enabled")
	require.NoError(t, err)
	assert.True(t, showSettings(t).Enabled)
}

func TestSettings_MemoryStore(t *testing.T) {
	isolate(t)
	t.Setenv("ASSISTLOOP_STORE_DRIVER", "memory")

	out, err := run(t, "settings", "set", "--agent-id", "abc-123")
	require.NoError(t, err)
	assert.Contains(t, out, `"agent_id": "abc-123"`)

	assert.Empty(t, showSettings(t).AgentID, "memory store does not persist between runs")
}

func TestConfigCmds(t *testing.T) {
	home := isolate(t)

	out, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.yaml")+"\n", out)

	_, err = run(t, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, "config.yaml"))

	_, err = run(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	t.Setenv("ASSISTLOOP_GATEWAY_TOKEN", "s3cret")
	out, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "s3cret")

	out, err = run(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "config OK")
}

func TestStatusCmd(t *testing.T) {
	isolate(t)
	_, err := run(t, "settings", "set", "--agent-id", "abc-123", "--enabled")
	require.NoError(t, err)

	out, err := run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Store:   sqlite")
	assert.Contains(t, out, "visible on all pages")
}
