package config

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultPort      = 8000
	DefaultHost      = "127.0.0.1"
	DefaultDataDir   = "./data"
	DefaultStaticDir = "."

	gamesFileName = "games.json"
	imagesDirName = "images"
)

type Config struct {
	Host      string `mapstructure:"HOST"`
	Port      int    `mapstructure:"PORT"`
	DataDir   string `mapstructure:"DATA_DIR"`
	StaticDir string `mapstructure:"STATIC_DIR"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) GamesFile() string {
	return filepath.Join(c.DataDir, gamesFileName)
}

func (c *Config) ImagesDir() string {
	return filepath.Join(c.DataDir, imagesDirName)
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"data-dir":   "data_dir",
	"static-dir": "static_dir",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("static_dir", DefaultStaticDir)
	return v
}

// Load builds a Config from defaults overridden by whichever known flags fs
// defines. Environment variables and config files are not consulted.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := newViper()
	if fs != nil {
		for flag, key := range flagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}
	return unmarshal(v)
}

// LoadServer parses the server command line: an optional positional port
// plus the --data-dir and --static-dir flags.
func LoadServer(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("game-collection", pflag.ContinueOnError)
	fs.String("data-dir", DefaultDataDir, "directory holding games.json and images/")
	fs.String("static-dir", DefaultStaticDir, "directory static files are served from")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one argument (port), got %d", fs.NArg())
	}

	cfg, err := Load(fs)
	if err != nil {
		return nil, err
	}
	if fs.NArg() == 1 {
		port, err := strconv.Atoi(fs.Arg(0))
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid port %q", fs.Arg(0))
		}
		cfg.Port = port
	}
	return cfg, nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("data directory must not be empty")
	}
	return &cfg, nil
}
