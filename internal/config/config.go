package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Upload   UploadConfig   `yaml:"upload" mapstructure:"upload"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the destination database.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Host        string `yaml:"host" mapstructure:"host"`
	Port        string `yaml:"port" mapstructure:"port"`
	Name        string `yaml:"name" mapstructure:"name"`
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
}

// ConnString returns the connection string for the configured store.
// A full database_url wins; otherwise the discrete host/name/user/password
// parts are assembled, and the error names every part that is missing.
func (c StoreConfig) ConnString() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}

	var missing []string
	for _, kv := range []struct{ key, val string }{
		{"store.host", c.Host},
		{"store.name", c.Name},
		{"store.user", c.User},
		{"store.password", c.Password},
	} {
		if kv.val == "" {
			missing = append(missing, kv.key)
		}
	}
	if len(missing) > 0 {
		return "", eris.Errorf(
			"config: set store.database_url (recommended) or set: %s",
			strings.Join(missing, ", "),
		)
	}

	port := c.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.User, c.Password, c.Host, port, c.Name), nil
}

// PipelineConfig configures the consolidation pipeline.
type PipelineConfig struct {
	ResultsDir string `yaml:"results_dir" mapstructure:"results_dir"`
	OutputDir  string `yaml:"output_dir" mapstructure:"output_dir"`
}

// UploadConfig configures the POI uploader defaults.
type UploadConfig struct {
	Table       string `yaml:"table" mapstructure:"table"`
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	CreatedByID int    `yaml:"created_by_id" mapstructure:"created_by_id"`
	UpdatedByID int    `yaml:"updated_by_id" mapstructure:"updated_by_id"`
	Status      string `yaml:"status" mapstructure:"status"`
	Status2     string `yaml:"status2" mapstructure:"status2"`
	MarkType    string `yaml:"mark_type" mapstructure:"mark_type"`
	UseType     string `yaml:"use_type" mapstructure:"use_type"`
	AlertType   string `yaml:"alert_type" mapstructure:"alert_type"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("POI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.port", "5432")
	v.SetDefault("pipeline.results_dir", ".")
	v.SetDefault("pipeline.output_dir", ".")
	v.SetDefault("upload.table", "public.skytron_api_pointofinterests")
	v.SetDefault("upload.batch_size", 1000)
	v.SetDefault("upload.created_by_id", 1)
	v.SetDefault("upload.updated_by_id", 1)
	v.SetDefault("upload.status", "Active")
	v.SetDefault("upload.status2", "Active")
	v.SetDefault("upload.mark_type", "Point")
	v.SetDefault("upload.use_type", "poi")
	v.SetDefault("upload.alert_type", "none")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
