package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/rewards/internal/logging"
	"github.com/mesh-intelligence/rewards/internal/paths"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

const (
	configName = "config"
	configType = "yaml"
	envPrefix  = "REWARDS"

	defaultAddr = "127.0.0.1:8080"
)

// settings is the resolved configuration: config.yaml overlaid with
// REWARDS_* environment variables and flags.
type settings struct {
	Backend string         `yaml:"backend" mapstructure:"backend"`
	DataDir string         `yaml:"data_dir,omitempty" mapstructure:"data_dir"`
	DSN     string         `yaml:"dsn,omitempty" mapstructure:"dsn"`
	HTTP    httpSettings   `yaml:"http" mapstructure:"http"`
	Log     logging.Config `yaml:"log" mapstructure:"log"`

	configDir string
}

type httpSettings struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	// Origins lists the hosts allowed to open the dashboard event socket.
	Origins []string `yaml:"origins,omitempty" mapstructure:"origins"`
}

func defaultSettings() settings {
	return settings{
		Backend: types.BackendSQLite,
		HTTP:    httpSettings{Addr: defaultAddr},
		Log:     logging.Default(),
	}
}

// storeConfig returns the store configuration for s.
func (s settings) storeConfig() types.Config {
	return types.Config{Backend: s.Backend, DataDir: s.DataDir, DSN: s.DSN}
}

// loadSettings reads config.yaml from the resolved config directory using
// Viper. A missing config.yaml is not an error; defaults apply.
func loadSettings(flags *rootFlags) (settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve config dir: %w", err)
	}

	def := defaultSettings()
	v := viper.New()
	v.SetDefault("backend", def.Backend)
	v.SetDefault("data_dir", "")
	v.SetDefault("dsn", "")
	v.SetDefault("http.addr", def.HTTP.Addr)
	v.SetDefault("http.origins", []string{})
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", def.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", def.Log.MaxBackups)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("decode config: %w", err)
	}
	s.configDir = configDir

	if s.Backend == types.BackendSQLite {
		s.DataDir, err = paths.ResolveDataDir(flags.dataDir, s.DataDir)
		if err != nil {
			return settings{}, fmt.Errorf("resolve data dir: %w", err)
		}
	}
	if flags.logLevel != "" {
		s.Log.Level = flags.logLevel
	}
	return s, nil
}

// writeConfigIfMissing creates config.yaml from s if the file does not
// exist. It reports whether a file was written.
func writeConfigIfMissing(configDir string, s settings) (bool, error) {
	path := filepath.Join(configDir, paths.ConfigFile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&s)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# rewards configuration\n# Environment variables prefixed REWARDS_ override these keys.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
