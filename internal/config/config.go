// Package config layers defaults, a YAML file, FOLDERCAP_* environment
// variables and command-line flags into one settings struct.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/michaelscutari/foldercap/internal/scan"
	"github.com/michaelscutari/foldercap/internal/units"
)

// EnvPrefix is prepended to environment variable names.
const EnvPrefix = "FOLDERCAP"

// DefaultFile is read when no --config is given and it exists.
const DefaultFile = "~/.config/foldercap/config.yaml"

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "yaml", "html"}

// Config holds resolved settings.
type Config struct {
	Root      string   `mapstructure:"root"`
	Mode      string   `mapstructure:"mode"`
	Horizon   string   `mapstructure:"horizon"`
	Date      string   `mapstructure:"date"`
	Size      int      `mapstructure:"size"`
	Exclude   []string `mapstructure:"exclude"`
	Out       string   `mapstructure:"out"`
	Retention int      `mapstructure:"retention"`
	LogDir    string   `mapstructure:"log-dir"`
	Format    string   `mapstructure:"format"`
	Verbose   bool     `mapstructure:"verbose"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("mode", "dormant")
	v.SetDefault("horizon", "1y")
	v.SetDefault("date", "")
	v.SetDefault("size", 1024)
	v.SetDefault("exclude", []string{})
	v.SetDefault("out", "./data")
	v.SetDefault("retention", 5)
	v.SetDefault("log-dir", "")
	v.SetDefault("format", "text")
	v.SetDefault("verbose", false)
}

// Load resolves settings. file names an explicit config file, which must
// exist; when empty, DefaultFile is used if present. Only flags the user
// actually set override the file and the environment.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readFile(v, file); err != nil {
		return nil, err
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if bindErr != nil || !isKey(f.Name) {
				return
			}
			bindErr = v.BindPFlag(f.Name, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func readFile(v *viper.Viper, file string) error {
	explicit := file != ""
	if !explicit {
		file = DefaultFile
	}
	path, err := homedir.Expand(file)
	if err != nil {
		return fmt.Errorf("expand config path: %w", err)
	}
	if !explicit {
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func isKey(name string) bool {
	switch name {
	case "root", "mode", "horizon", "date", "size", "exclude", "out",
		"retention", "log-dir", "format", "verbose":
		return true
	}
	return false
}

// Validate checks the enumerated and numeric settings. Paths, dates and
// sizes are checked again by the scan itself.
func (c *Config) Validate() error {
	var errs []error
	if _, err := scan.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.Date == "" {
		h, err := units.ParseHorizon(c.Horizon)
		if err != nil {
			errs = append(errs, err)
		} else if h.Unit == units.Custom {
			errs = append(errs, errors.New("horizon custom requires a date"))
		}
	}
	if !validFormat(c.Format) {
		errs = append(errs, fmt.Errorf("unknown format %q (expected one of %s)", c.Format, strings.Join(Formats, ", ")))
	}
	if c.Retention < 0 {
		errs = append(errs, fmt.Errorf("retention must be >= 0, got %d", c.Retention))
	}
	if c.Size <= 0 {
		errs = append(errs, fmt.Errorf("size must be positive, got %d", c.Size))
	}
	return errors.Join(errs...)
}

func validFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// HorizonPreset returns the preset used for the reference date. An explicit
// date always yields units.CustomHorizon.
func (c *Config) HorizonPreset() (units.Horizon, error) {
	if c.Date != "" {
		return units.CustomHorizon, nil
	}
	return units.ParseHorizon(c.Horizon)
}

// ReferenceDate returns the explicit date, or the horizon counted back from
// now.
func (c *Config) ReferenceDate(now time.Time) (string, error) {
	h, err := c.HorizonPreset()
	if err != nil {
		return "", err
	}
	if h.Unit == units.Custom {
		if c.Date == "" {
			return "", errors.New("horizon custom requires a date")
		}
		return c.Date, nil
	}
	return h.ReferenceDate(now), nil
}

// ScanParams converts the settings into engine input.
func (c *Config) ScanParams(now time.Time) (scan.Params, error) {
	mode, err := scan.ParseMode(c.Mode)
	if err != nil {
		return scan.Params{}, err
	}
	date, err := c.ReferenceDate(now)
	if err != nil {
		return scan.Params{}, err
	}
	return scan.Params{
		Root:    c.Root,
		Mode:    mode,
		Date:    date,
		SizeMB:  fmt.Sprint(c.Size),
		Exclude: c.Exclude,
	}, nil
}
