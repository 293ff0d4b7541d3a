// Package config resolves the generator configuration from, in increasing
// precedence: struct defaults, a YAML file, the environment (and .env), and
// command-line flags.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/jrazmi/routegen/app/generators/manifest"
	"github.com/jrazmi/routegen/sdk/environment"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment variable read by the generator.
const EnvPrefix = "ROUTEGEN"

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "routegen.yaml"

// Config holds every setting of a generation run. Empty SchemaPath and
// OutputDir are resolved by discovery.
type Config struct {
	SchemaPath    string        `yaml:"schema" env:"SCHEMA"`
	OutputDir     string        `yaml:"output" env:"OUTPUT"`
	TemplateDir   string        `yaml:"templates" env:"TEMPLATES" default:"templates"`
	Extension     string        `yaml:"extension" env:"EXTENSION" default:"svelte"`
	ManifestFile  string        `yaml:"manifest_file" env:"MANIFEST_FILE" default:".routegen-manifest.json"`
	ManifestDSN   string        `yaml:"manifest_dsn" env:"MANIFEST_DSN"`
	Concurrency   int           `yaml:"concurrency" env:"CONCURRENCY" default:"0"`
	LockTimeout   time.Duration `yaml:"lock_timeout" env:"LOCK_TIMEOUT" default:"10s"`
	WatchDebounce time.Duration `yaml:"watch_debounce" env:"WATCH_DEBOUNCE" default:"250ms"`
	DryRun        bool          `yaml:"dry_run" env:"DRY_RUN" default:"false"`
}

// Default returns a Config holding only the defaults.
func Default() Config {
	var cfg Config
	// The default tags are static; a failure here is a programming error.
	if err := environment.ApplyDefaults(&cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. When path is empty DefaultFile is used if it exists; an
// explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	file, required := path, true
	if file == "" {
		file, required = DefaultFile, false
	}
	if err := LoadFile(file, &cfg); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := environment.Load(); err != nil {
		return Config{}, err
	}
	if err := environment.OverlayEnvTags(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes the YAML file at path over cfg. Keys absent from the file
// leave cfg untouched.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// Validate reports settings that can never produce a run.
func (c Config) Validate() error {
	var errs []error
	if c.Extension == "" {
		errs = append(errs, errors.New("extension must not be empty"))
	}
	if c.ManifestFile == "" {
		errs = append(errs, errors.New("manifest file name must not be empty"))
	}
	if strings.ContainsAny(c.ManifestFile, `/\`) {
		errs = append(errs, fmt.Errorf("manifest file %q must be a bare file name", c.ManifestFile))
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency %d must not be negative", c.Concurrency))
	}
	if c.LockTimeout < 0 {
		errs = append(errs, fmt.Errorf("lock timeout %s must not be negative", c.LockTimeout))
	}
	if c.WatchDebounce < 0 {
		errs = append(errs, fmt.Errorf("watch debounce %s must not be negative", c.WatchDebounce))
	}
	return errors.Join(errs...)
}

// ManifestName returns the manifest file name, falling back to
// manifest.DefaultFileName.
func (c Config) ManifestName() string {
	if c.ManifestFile == "" {
		return manifest.DefaultFileName
	}
	return c.ManifestFile
}

// Flags binds the command-line overrides of a Config to a flag set.
type Flags struct {
	fs         *flag.FlagSet
	configPath string
	values     Config
}

// RegisterFlags defines the shared generator flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	d := Default()

	fs.StringVar(&f.configPath, "config", "", "Path to a YAML config file (default ./"+DefaultFile+" when present)")
	fs.StringVar(&f.values.SchemaPath, "schema", "", "Path to the schema file (auto-discovered when omitted)")
	fs.StringVar(&f.values.OutputDir, "output", "", "Application root receiving routes/ (auto-discovered when omitted)")
	fs.StringVar(&f.values.TemplateDir, "templates", d.TemplateDir, "Directory holding <view>.tmpl templates")
	fs.StringVar(&f.values.Extension, "ext", d.Extension, "File extension of generated views")
	fs.StringVar(&f.values.ManifestFile, "manifest", d.ManifestFile, "Manifest file name inside the output root")
	fs.StringVar(&f.values.ManifestDSN, "manifest-db", "", "Postgres URL; keeps the manifest in the database instead of a file")
	fs.IntVar(&f.values.Concurrency, "workers", d.Concurrency, "Concurrent template renders (0 = GOMAXPROCS)")
	fs.DurationVar(&f.values.LockTimeout, "lock-timeout", d.LockTimeout, "How long to wait for another run to release the output lock")
	fs.DurationVar(&f.values.WatchDebounce, "debounce", d.WatchDebounce, "Quiet period before a watch run starts")
	fs.BoolVar(&f.values.DryRun, "dry-run", false, "Report decisions without writing artifacts or the manifest")
	return f
}

// ConfigPath returns the value of -config.
func (f *Flags) ConfigPath() string { return f.configPath }

// Apply copies every flag that was set on the command line onto cfg.
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "schema":
			cfg.SchemaPath = f.values.SchemaPath
		case "output":
			cfg.OutputDir = f.values.OutputDir
		case "templates":
			cfg.TemplateDir = f.values.TemplateDir
		case "ext":
			cfg.Extension = f.values.Extension
		case "manifest":
			cfg.ManifestFile = f.values.ManifestFile
		case "manifest-db":
			cfg.ManifestDSN = f.values.ManifestDSN
		case "workers":
			cfg.Concurrency = f.values.Concurrency
		case "lock-timeout":
			cfg.LockTimeout = f.values.LockTimeout
		case "debounce":
			cfg.WatchDebounce = f.values.WatchDebounce
		case "dry-run":
			cfg.DryRun = f.values.DryRun
		}
	})
}

// Resolve loads the layered Config and applies the parsed flags on top.
func (f *Flags) Resolve() (Config, error) {
	cfg, err := Load(f.configPath)
	if err != nil {
		return Config{}, err
	}
	f.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
