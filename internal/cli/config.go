package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/internal/model"
	"github.com/mesh-intelligence/pantry/internal/paths"
	"github.com/mesh-intelligence/pantry/internal/sqlstore"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// Config keys.
	cfgKeyBackend = "backend"
	cfgKeyDataDir = "data_dir"
	cfgKeyDSN     = "dsn"
	cfgKeyModel   = "model"

	defaultBackend = types.BackendSQLite
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# pantry configuration

# Storage backend: sqlite or postgres
backend: sqlite

# Data directory for the SQLite database (optional; overridable by --data-dir)
# data_dir:

# PostgreSQL connection string, required when backend is postgres
# dsn: postgres://pantry@localhost/pantry?sslmode=disable

# Entity model applied every time the store is opened (optional)
# model: model.yaml
`

// settings is the resolved configuration of one CLI invocation.
type settings struct {
	configDir string
	store     types.Config
	model     string // entity model file, absolute; empty when unset
}

// loadConfig reads config.yaml from the config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
// PANTRY_BACKEND, PANTRY_DSN and PANTRY_MODEL override the file.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("PANTRY")
	for _, key := range []string{cfgKeyBackend, cfgKeyDSN, cfgKeyModel} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// resolveSettings merges flags, config.yaml, environment and defaults.
func resolveSettings() (settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return settings{}, err
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}

	s := settings{
		configDir: configDir,
		store: types.Config{
			Backend: firstNonEmpty(flags.backend, v.GetString(cfgKeyBackend)),
			DataDir: dataDir,
			DSN:     firstNonEmpty(flags.dsn, v.GetString(cfgKeyDSN)),
		},
	}
	if m := v.GetString(cfgKeyModel); m != "" {
		if !filepath.IsAbs(m) {
			m = filepath.Join(configDir, m)
		}
		s.model = m
	}
	if err := s.store.Validate(); err != nil {
		return settings{}, fmt.Errorf("config: %w", err)
	}
	return s, nil
}

// openStore attaches the configured backend and applies the configured
// entity model. The caller must Detach the returned backend.
func openStore(s settings) (*sqlstore.Backend, error) {
	b := sqlstore.NewBackend()
	if err := b.Attach(s.store); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	if s.model == "" {
		return b, nil
	}

	entities, err := model.Load(s.model)
	if err != nil {
		b.Detach()
		return nil, err
	}
	for _, e := range entities {
		if err := b.DefineEntity(e); err != nil {
			b.Detach()
			return nil, fmt.Errorf("apply model: %w", err)
		}
	}
	logger.Debug("applied configured model", zap.String("path", s.model), zap.Int("entities", len(entities)))
	return b, nil
}

// withStore resolves settings, opens the store, and runs fn against it.
func withStore(fn func(s settings, b *sqlstore.Backend) error) error {
	s, err := resolveSettings()
	if err != nil {
		return err
	}
	b, err := openStore(s)
	if err != nil {
		return err
	}
	defer b.Detach()
	return fn(s, b)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
