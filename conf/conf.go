// Package conf loads the application configuration from a YAML file and the
// environment. Every subsystem declares its own Config struct; this package
// stitches them into one document and fills the gaps with defaults.
package conf

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/looplj/adminhub/internal/log"
	"github.com/looplj/adminhub/internal/metrics"
	"github.com/looplj/adminhub/internal/pkg/xcache"
	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/server"
	"github.com/looplj/adminhub/internal/server/biz"
	"github.com/looplj/adminhub/internal/server/snapshot"
	"github.com/looplj/adminhub/internal/server/sweep"
	"github.com/looplj/adminhub/internal/storage"
)

type Config struct {
	APIServer server.Config   `conf:"server" yaml:"server" json:"server"`
	Log       log.Config      `conf:"log" yaml:"log" json:"log"`
	Auth      biz.AuthConfig  `conf:"auth" yaml:"auth" json:"auth"`
	Store     storage.Config  `conf:"store" yaml:"store" json:"store"`
	Cache     xcache.Config   `conf:"cache" yaml:"cache" json:"cache"`
	Sweep     sweep.Config    `conf:"sweep" yaml:"sweep" json:"sweep"`
	Snapshot  snapshot.Config `conf:"snapshot" yaml:"snapshot" json:"snapshot"`
	Metrics   metrics.Config  `conf:"metrics" yaml:"metrics" json:"metrics"`

	// Lists declares additional lists beyond the built-in ones. Field
	// types, defaults and access rules come straight from the file.
	Lists []schema.ListSpec `conf:"lists" yaml:"lists" json:"lists"`
}

// Load reads the configuration. The file is optional; its location comes from
// ADMINHUB_CONFIG or the search path, and any value can be overridden through
// ADMINHUB_* environment variables.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("adminhub")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./conf")
	v.AddConfigPath("/etc/adminhub")

	if path := os.Getenv("ADMINHUB_CONFIG"); path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("ADMINHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "conf"
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Config{}, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	return cfg, nil
}
