// Package config holds application-level settings: where the data files
// live and how chatty the logs are. Everything can come from a config file,
// RPK_* environment variables, or the defaults, in that order of priority.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	v *viper.Viper
}

func DefaultConfig() Config {
	v := viper.New()
	v.SetDefault("price-table", "data/rune-price-table.json")
	v.SetDefault("boss-drops-dir", "data/boss_drops")
	v.SetDefault("run-config", "data/run-config.json")
	v.SetDefault("plan-config", "data/plan.yaml")
	v.SetDefault("debug", false)
	v.SetEnvPrefix("rpk")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return Config{v: v}
}

// Load merges settings from a config file. An empty path keeps defaults
// and environment only.
func (c Config) Load(path string) error {
	if path == "" {
		return nil
	}
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

func (c Config) PriceTablePath() string { return c.v.GetString("price-table") }
func (c Config) BossDropsDir() string   { return c.v.GetString("boss-drops-dir") }
func (c Config) RunConfigPath() string  { return c.v.GetString("run-config") }
func (c Config) PlanConfigPath() string { return c.v.GetString("plan-config") }
func (c Config) Debug() bool            { return c.v.GetBool("debug") }

func (c Config) Set(key string, value any) { c.v.Set(key, value) }

func (c Config) AllSettings() map[string]any { return c.v.AllSettings() }
