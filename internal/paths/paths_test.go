package paths

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform swaps the platform lookups for the duration of a test.
func fakePlatform(t *testing.T, goos string, env map[string]string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })

	platformDir.goos = goos
	platformDir.getenv = func(k string) string { return env[k] }
	platformDir.homeDir = func() (string, error) { return "/home/ana", nil }
	platformDir.userConfigDir = func() (string, error) { return "/Users/ana/Library/Application Support", nil }
}

func TestDefaultDirs(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		env        map[string]string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux without XDG",
			goos:       "linux",
			wantConfig: "/home/ana/.config/rewards",
			wantData:   "/home/ana/.local/share/rewards",
		},
		{
			name:       "linux with XDG",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			wantConfig: "/xdg/config/rewards",
			wantData:   "/xdg/data/rewards",
		},
		{
			name:       "darwin",
			goos:       "darwin",
			wantConfig: "/Users/ana/Library/Application Support/rewards",
			wantData:   "/Users/ana/Library/Application Support/rewards",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakePlatform(t, tt.goos, tt.env)

			got, err := DefaultConfigDir()
			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, got)

			got, err = DefaultDataDir()
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, got)
		})
	}
}

func TestDefaultDirHomeError(t *testing.T) {
	fakePlatform(t, "linux", nil)
	platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
	_, err := DefaultConfigDir()
	assert.Error(t, err)
}

func TestResolveConfigDir(t *testing.T) {
	fakePlatform(t, "linux", map[string]string{EnvConfigDir: "/env/config"})

	got, err := ResolveConfigDir("/flag/config")
	require.NoError(t, err)
	assert.Equal(t, "/flag/config", got)

	got, err = ResolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, "/env/config", got)

	platformDir.getenv = func(string) string { return "" }
	got, err = ResolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, "/home/ana/.config/rewards", got)
}

func TestResolveDataDir(t *testing.T) {
	fakePlatform(t, "linux", map[string]string{EnvDataDir: "/env/data"})

	tests := []struct {
		name   string
		flag   string
		config string
		want   string
	}{
		{name: "flag wins", flag: "/flag", config: "/config", want: "/flag"},
		{name: "config beats env", config: "/config", want: "/config"},
		{name: "env beats default", want: "/env/data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDataDir(tt.flag, tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("relative paths are made absolute", func(t *testing.T) {
		got, err := ResolveDataDir("rel", "")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
	})
}
