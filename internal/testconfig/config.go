// Package testconfig describes how the task API test suite is discovered,
// run, measured and reported.
package testconfig

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/workshopstudio/taskapi/internal/config"
	"github.com/workshopstudio/taskapi/internal/constants"
)

// Configuration file lookup
const (
	ConfigName  = "testkit"
	ConfigType  = "yaml"
	EnvPrefix   = "TESTKIT"
	RootDirVar  = "<rootDir>"
	keyDelim    = "::"
	excludeMark = "!"
)

// Reporter names
const (
	ReporterDefault = "default"
	ReporterJUnit   = "junit"
	ReporterHTML    = "html"
)

// Coverage reporter names
const (
	CoverageText = "text"
	CoverageLCOV = "lcov"
	CoverageHTML = "html"
	CoverageJSON = "json"
)

// Reporter option keys
const (
	OptOutputDirectory = "output_directory"
	OptOutputName      = "output_name"
	OptSuiteName       = "suite_name"
	OptPublicPath      = "public_path"
	OptFilename        = "filename"
	OptExpand          = "expand"
)

var (
	knownReporters         = []string{ReporterDefault, ReporterJUnit, ReporterHTML}
	knownCoverageReporters = []string{CoverageText, CoverageLCOV, CoverageHTML, CoverageJSON}
)

// Config is the test runner descriptor
type Config struct {
	Environment       string            `mapstructure:"environment" yaml:"environment"`
	TestMatch         []string          `mapstructure:"test_match" yaml:"test_match"`
	Coverage          Coverage          `mapstructure:"coverage" yaml:"coverage"`
	SetupFiles        []string          `mapstructure:"setup_files" yaml:"setup_files"`
	ModuleDirectories []string          `mapstructure:"module_directories" yaml:"module_directories"`
	TestTimeout       time.Duration     `mapstructure:"test_timeout" yaml:"test_timeout"`
	Verbose           bool              `mapstructure:"verbose" yaml:"verbose"`
	Transform         []Transform       `mapstructure:"transform" yaml:"transform"`
	ClearMocks        bool              `mapstructure:"clear_mocks" yaml:"clear_mocks"`
	RestoreMocks      bool              `mapstructure:"restore_mocks" yaml:"restore_mocks"`
	Globals           map[string]string `mapstructure:"globals" yaml:"globals"`
	Reporters         []Reporter        `mapstructure:"reporters" yaml:"reporters"`
	ModuleNameMapping []Alias           `mapstructure:"module_name_mapping" yaml:"module_name_mapping"`
}

// Coverage configures coverage collection and enforcement
type Coverage struct {
	Collect     bool       `mapstructure:"collect" yaml:"collect"`
	Directory   string     `mapstructure:"directory" yaml:"directory"`
	Reporters   []string   `mapstructure:"reporters" yaml:"reporters"`
	Thresholds  Thresholds `mapstructure:"thresholds" yaml:"thresholds"`
	CollectFrom []string   `mapstructure:"collect_from" yaml:"collect_from"`
}

// Thresholds are the minimum global coverage percentages
type Thresholds struct {
	Branches   float64 `mapstructure:"branches" yaml:"branches"`
	Functions  float64 `mapstructure:"functions" yaml:"functions"`
	Lines      float64 `mapstructure:"lines" yaml:"lines"`
	Statements float64 `mapstructure:"statements" yaml:"statements"`
}

// Transform names the preprocessor applied to files matching Pattern
type Transform struct {
	Pattern     string `mapstructure:"pattern" yaml:"pattern"`
	Transformer string `mapstructure:"transformer" yaml:"transformer"`
}

// Reporter is a named test result reporter and its options
type Reporter struct {
	Name    string                 `mapstructure:"name" yaml:"name"`
	Options map[string]interface{} `mapstructure:"options" yaml:"options,omitempty"`
}

// Alias maps import paths matching Pattern to Target. Target may use
// <rootDir> and regexp capture group references such as $1.
type Alias struct {
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	Target  string `mapstructure:"target" yaml:"target"`
}

// Default returns the built-in runner configuration
func Default() *Config {
	return &Config{
		Environment: "go",
		TestMatch:   []string{"**/tests/**/*_test.go", "**/*_test.go"},
		Coverage: Coverage{
			Collect:   true,
			Directory: "coverage",
			Reporters: []string{CoverageText, CoverageLCOV, CoverageHTML, CoverageJSON},
			Thresholds: Thresholds{
				Branches:   80,
				Functions:  80,
				Lines:      80,
				Statements: 80,
			},
			CollectFrom: []string{
				"internal/**/*.go",
				"cmd/**/*.go",
				"!**/*_test.go",
				"!**/vendor/**",
				"!**/coverage/**",
			},
		},
		SetupFiles:        []string{"test/setup.go"},
		ModuleDirectories: []string{"vendor", "internal", "test"},
		TestTimeout:       30 * time.Second,
		Verbose:           true,
		Transform:         []Transform{{Pattern: `^.+\.go$`, Transformer: "gofmt"}},
		ClearMocks:        true,
		RestoreMocks:      true,
		Globals: map[string]string{
			constants.EnvAWSRegion:   config.TestRegion,
			constants.EnvTableName:   config.TestTableName,
			constants.EnvAPIEndpoint: config.TestAPIEndpoint,
		},
		Reporters: []Reporter{
			{Name: ReporterDefault},
			{Name: ReporterJUnit, Options: map[string]interface{}{
				OptOutputDirectory: "test-results",
				OptOutputName:      "junit.xml",
				OptSuiteName:       "AWS Workshop Studio Tests",
			}},
			{Name: ReporterHTML, Options: map[string]interface{}{
				OptPublicPath: "test-results",
				OptFilename:   "test-report.html",
				OptExpand:     true,
			}},
		},
		ModuleNameMapping: []Alias{
			{Pattern: `^@/(.*)$`, Target: RootDirVar + "/internal/$1"},
			{Pattern: `^@tests/(.*)$`, Target: RootDirVar + "/test/$1"},
			{Pattern: `^@utils/(.*)$`, Target: RootDirVar + "/internal/utils/$1"},
		},
	}
}

// Load reads the runner configuration. An empty path looks for testkit.yaml
// in the working directory and falls back to the defaults when it is
// missing; an explicit path must exist. TESTKIT_* environment variables
// override scalar settings.
func Load(path string) (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelim))
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelim, "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType(ConfigType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Globals = upperKeys(cfg.Globals)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	key := func(parts ...string) string {
		return strings.Join(parts, keyDelim)
	}

	v.SetDefault("environment", d.Environment)
	v.SetDefault("test_match", d.TestMatch)
	v.SetDefault(key("coverage", "collect"), d.Coverage.Collect)
	v.SetDefault(key("coverage", "directory"), d.Coverage.Directory)
	v.SetDefault(key("coverage", "reporters"), d.Coverage.Reporters)
	v.SetDefault(key("coverage", "thresholds", "branches"), d.Coverage.Thresholds.Branches)
	v.SetDefault(key("coverage", "thresholds", "functions"), d.Coverage.Thresholds.Functions)
	v.SetDefault(key("coverage", "thresholds", "lines"), d.Coverage.Thresholds.Lines)
	v.SetDefault(key("coverage", "thresholds", "statements"), d.Coverage.Thresholds.Statements)
	v.SetDefault(key("coverage", "collect_from"), d.Coverage.CollectFrom)
	v.SetDefault("setup_files", d.SetupFiles)
	v.SetDefault("module_directories", d.ModuleDirectories)
	v.SetDefault("test_timeout", d.TestTimeout.String())
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("transform", toMaps(d.Transform, func(t Transform) map[string]interface{} {
		return map[string]interface{}{"pattern": t.Pattern, "transformer": t.Transformer}
	}))
	v.SetDefault("clear_mocks", d.ClearMocks)
	v.SetDefault("restore_mocks", d.RestoreMocks)
	v.SetDefault("globals", d.Globals)
	v.SetDefault("reporters", toMaps(d.Reporters, func(r Reporter) map[string]interface{} {
		return map[string]interface{}{"name": r.Name, "options": r.Options}
	}))
	v.SetDefault("module_name_mapping", toMaps(d.ModuleNameMapping, func(a Alias) map[string]interface{} {
		return map[string]interface{}{"pattern": a.Pattern, "target": a.Target}
	}))
}

func toMaps[T any](items []T, fn func(T) map[string]interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

// viper folds map keys to lower case; environment variable names are upper case
func upperKeys(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = v
	}
	return out
}

// Validate checks the configuration for values the runner cannot use
func (c *Config) Validate() error {
	if len(c.TestMatch) == 0 {
		return fmt.Errorf("test_match must not be empty")
	}
	if c.TestTimeout <= 0 {
		return fmt.Errorf("test_timeout must be positive, got %s", c.TestTimeout)
	}
	if err := c.Coverage.Thresholds.validate(); err != nil {
		return err
	}
	for _, name := range c.Coverage.Reporters {
		if !contains(knownCoverageReporters, name) {
			return fmt.Errorf("unknown coverage reporter: %s", name)
		}
	}
	for _, r := range c.Reporters {
		if !contains(knownReporters, r.Name) {
			return fmt.Errorf("unknown reporter: %s", r.Name)
		}
	}
	for _, t := range c.Transform {
		if _, err := regexp.Compile(t.Pattern); err != nil {
			return fmt.Errorf("invalid transform pattern %q: %w", t.Pattern, err)
		}
	}
	for _, a := range c.ModuleNameMapping {
		if _, err := regexp.Compile(a.Pattern); err != nil {
			return fmt.Errorf("invalid module name mapping %q: %w", a.Pattern, err)
		}
	}
	return nil
}

func (t Thresholds) validate() error {
	for name, value := range map[string]float64{
		"branches":   t.Branches,
		"functions":  t.Functions,
		"lines":      t.Lines,
		"statements": t.Statements,
	} {
		if value < 0 || value > 100 {
			return fmt.Errorf("coverage threshold %s must be between 0 and 100, got %v", name, value)
		}
	}
	return nil
}

// Reporter returns the configured reporter with the given name
func (c *Config) Reporter(name string) (Reporter, bool) {
	for _, r := range c.Reporters {
		if r.Name == name {
			return r, true
		}
	}
	return Reporter{}, false
}

// Transformer returns the transformer for path, or "" when no pattern matches
func (c *Config) Transformer(path string) string {
	for _, t := range c.Transform {
		if re, err := regexp.Compile(t.Pattern); err == nil && re.MatchString(path) {
			return t.Transformer
		}
	}
	return ""
}

// StringOption returns the option as a string, or def when it is unset
func (r Reporter) StringOption(key, def string) string {
	if v, ok := r.Options[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return def
}

// BoolOption returns the option as a bool, or def when it is unset or not a bool
func (r Reporter) BoolOption(key string, def bool) bool {
	switch v := r.Options[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return def
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
