package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "short", input: "short", want: "****"},
		{name: "exactly ten", input: "1234567890", want: "****"},
		{name: "long", input: "super-secret-token-value", want: "supe****alue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskSecret(tt.input))
		})
	}
}

func TestMaskConfig(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "prod",
		Profiles: map[string]Profile{
			"prod": {Host: "https://extract.example.com", Token: "super-secret-token-value", Workspace: "ws-prod", Output: "json"},
		},
	}

	masked := maskConfig(cfg)

	assert.Equal(t, "prod", masked.CurrentProfile)
	assert.Equal(t, "https://extract.example.com", masked.Profiles["prod"].Host)
	assert.Equal(t, "supe****alue", masked.Profiles["prod"].Token)
	assert.Equal(t, "ws-prod", masked.Profiles["prod"].Workspace)
	assert.Equal(t, "json", masked.Profiles["prod"].Output)
	// The original is untouched.
	assert.Equal(t, "super-secret-token-value", cfg.Profiles["prod"].Token)
}

func TestConfigShow_MasksToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {Host: "http://localhost:8080", Token: "super-secret-token-value"},
		},
	}))

	restore := captureStdout(t)
	cmd := newConfigShowCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(nil)
	err := cmd.Execute()
	out := restore()

	require.NoError(t, err)
	assert.Contains(t, out, "current-profile: default")
	assert.Contains(t, out, "supe****alue")
	assert.NotContains(t, out, "super-secret-token-value")
}

func TestConfigShow_Reveal(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {Token: "super-secret-token-value"},
		},
	}))

	restore := captureStdout(t)
	cmd := newConfigShowCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--reveal"})
	err := cmd.Execute()
	out := restore()

	require.NoError(t, err)
	assert.Contains(t, out, "super-secret-token-value")
}

func TestConfigSetProfile_CreatesConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	restore := captureStdout(t)
	cmd := newConfigSetProfileCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--name", "staging", "--host", "https://staging.example.com", "--token", "tok", "--workspace", "ws-staging"})
	err := cmd.Execute()
	out := restore()

	require.NoError(t, err)
	assert.Contains(t, out, `Profile "staging" saved to`)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.CurrentProfile)
	assert.Equal(t, "https://staging.example.com", cfg.Profiles["staging"].Host)
	assert.Equal(t, "tok", cfg.Profiles["staging"].Token)
	assert.Equal(t, "ws-staging", cfg.Profiles["staging"].Workspace)
}

func TestConfigSetProfile_PreservesUnsetFields(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {Host: "http://old.example.com", Token: "keep-me"},
		},
	}))

	restore := captureStdout(t)
	cmd := newConfigSetProfileCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--name", "default", "--host", "http://new.example.com"})
	err := cmd.Execute()
	restore()

	require.NoError(t, err)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://new.example.com", cfg.Profiles["default"].Host)
	assert.Equal(t, "keep-me", cfg.Profiles["default"].Token)
}

func TestConfigSetProfile_InvalidOutput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cmd := newConfigSetProfileCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--name", "default", "--output", "xml"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported output format "xml"`)
}

func TestConfigUseProfile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {Host: "http://localhost:8080"},
			"prod":    {Host: "https://extract.example.com"},
		},
	}))

	restore := captureStdout(t)
	cmd := newConfigUseProfileCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"prod"})
	err := cmd.Execute()
	out := restore()

	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `Active profile set to "prod"`))

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.CurrentProfile)
}

func TestConfigUseProfile_NotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles:       map[string]Profile{"default": {}},
	}))

	cmd := newConfigUseProfileCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"ghost"})
	err := cmd.Execute()
	require.EqualError(t, err, `profile "ghost" not found`)
}
