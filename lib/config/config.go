// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/splitpack/splitpack/lib/candidate"
	"github.com/splitpack/splitpack/lib/compress"
	"github.com/splitpack/splitpack/lib/emit"
	"github.com/splitpack/splitpack/lib/loaderrule"
	"github.com/splitpack/splitpack/lib/modgraph"
	"github.com/splitpack/splitpack/lib/transpile"
)

// Mode selects which override section applies.
type Mode string

const (
	// Development is the default: readable names, no sidecars.
	Development Mode = "development"
	// Production favours cacheable output.
	Production Mode = "production"
)

// EnvVar names the configuration file for [Load].
const EnvVar = "SPLITPACK_CONFIG"

// PresetExtension generates candidates from the configured entries with
// [candidate.Combinations].
const PresetExtension = "extension"

// Config is a splitpack build configuration.
type Config struct {
	Mode Mode `yaml:"mode"`

	Paths PathsConfig `yaml:"paths"`

	// Entries are ordered. Order fixes each entry's position in every
	// reachability set and the order of private bundles.
	Entries []modgraph.EntrySpec `yaml:"entries"`

	// Preset generates the candidate list. Mutually exclusive with
	// Candidates.
	Preset string `yaml:"preset,omitempty"`

	// Candidates are ordered, highest priority first.
	Candidates []candidate.Candidate `yaml:"candidates,omitempty"`

	Output OutputConfig `yaml:"output"`

	Resolve ResolveConfig `yaml:"resolve"`

	// Rules are ordered loader rules. Nil means loaderrule.Defaults; an
	// explicit empty list leaves every module to the built-in loaders.
	Rules []loaderrule.Rule `yaml:"rules,omitempty"`

	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides holds the fields a mode section may change.
type Overrides struct {
	Paths  *PathsConfig  `yaml:"paths,omitempty"`
	Output *OutputConfig `yaml:"output,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the project root: entry roots, module ids and loader rule
	// patterns are relative to it.
	Root string `yaml:"root"`

	// Output is where artifacts and the manifest are written.
	Output string `yaml:"output"`

	// Graph is an optional JSONC module graph description. When set,
	// sources are not scanned for imports.
	Graph string `yaml:"graph,omitempty"`
}

// OutputConfig configures artifact naming and encoding.
type OutputConfig struct {
	Filename      string `yaml:"filename"`
	ChunkFilename string `yaml:"chunk_filename"`

	// Compression is none, zstd or lz4.
	Compression string `yaml:"compression"`

	// Concurrency bounds parallel work. Zero means GOMAXPROCS.
	Concurrency int `yaml:"concurrency"`

	PublicPath string `yaml:"public_path,omitempty"`

	// Target is the language level scripts are compiled to, es2015
	// through es2022 or esnext.
	Target string `yaml:"target"`

	// Minify compiles scripts minified.
	Minify bool `yaml:"minify,omitempty"`
}

// ResolveConfig configures source scanning.
type ResolveConfig struct {
	Extensions []string `yaml:"extensions"`
}

// Production output defaults.
const (
	ProductionFilename      = "[name].[hash:8].js"
	ProductionChunkFilename = "commons.[name].[hash:8].js"
)

// Default returns the configuration every file is merged into.
func Default() *Config {
	return &Config{
		Mode: Development,
		Paths: PathsConfig{
			Root:   ".",
			Output: "dist",
		},
		Output: OutputConfig{
			Filename:      emit.DefaultFilename,
			ChunkFilename: candidate.DefaultChunkFilename,
			Compression:   string(compress.None),
			Target:        transpile.DefaultTarget,
		},
		Resolve: ResolveConfig{
			Extensions: slices.Clone(modgraph.DefaultExtensions),
		},
	}
}

// Load loads the file named by SPLITPACK_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your splitpack.yaml, or use --config", EnvVar)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path.
func LoadFile(path string) (*Config, error) {
	return LoadFileWithEnv(path, "")
}

// LoadFileWithEnv loads configuration from path, expanding variables
// from the dotenv file envFile first when it is non-empty. The dotenv
// file does not modify the process environment.
func LoadFileWithEnv(path, envFile string) (*Config, error) {
	var env map[string]string
	if envFile != "" {
		var err error
		env, err = godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	config, err := Parse(data, filepath.Dir(absolute), env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Parse decodes YAML over [Default], applies the mode overrides and
// expands variables. Relative roots resolve against base.
func Parse(data []byte, base string, env map[string]string) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	config.applyModeOverrides()
	config.expandVariables(env)
	config.resolvePaths(base)
	return config, nil
}

// applyModeOverrides applies the section matching Mode.
func (c *Config) applyModeOverrides() {
	var overrides *Overrides

	switch c.Mode {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		// Production defaults only replace settings still at their
		// development default.
		if overrides == nil {
			defaults := Default().Output
			overrides = &Overrides{Output: &OutputConfig{}}
			if c.Output.Filename == defaults.Filename {
				overrides.Output.Filename = ProductionFilename
			}
			if c.Output.ChunkFilename == defaults.ChunkFilename {
				overrides.Output.ChunkFilename = ProductionChunkFilename
			}
			if c.Output.Compression == defaults.Compression {
				overrides.Output.Compression = string(compress.Zstd)
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Output != "" {
			c.Paths.Output = overrides.Paths.Output
		}
		if overrides.Paths.Graph != "" {
			c.Paths.Graph = overrides.Paths.Graph
		}
	}

	if overrides.Output != nil {
		if overrides.Output.Filename != "" {
			c.Output.Filename = overrides.Output.Filename
		}
		if overrides.Output.ChunkFilename != "" {
			c.Output.ChunkFilename = overrides.Output.ChunkFilename
		}
		if overrides.Output.Compression != "" {
			c.Output.Compression = overrides.Output.Compression
		}
		if overrides.Output.Concurrency != 0 {
			c.Output.Concurrency = overrides.Output.Concurrency
		}
		if overrides.Output.PublicPath != "" {
			c.Output.PublicPath = overrides.Output.PublicPath
		}
		if overrides.Output.Target != "" {
			c.Output.Target = overrides.Output.Target
		}
		if overrides.Output.Minify {
			c.Output.Minify = true
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables(env map[string]string) {
	vars := map[string]string{"HOME": os.Getenv("HOME")}
	for name, value := range env {
		vars[name] = value
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["SPLITPACK_ROOT"] = c.Paths.Root

	c.Paths.Output = expandVars(c.Paths.Output, vars)
	c.Paths.Graph = expandVars(c.Paths.Graph, vars)
	c.Output.PublicPath = expandVars(c.Output.PublicPath, vars)
	for index := range c.Entries {
		c.Entries[index].Path = expandVars(c.Entries[index].Path, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns from vars,
// then the environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

func (c *Config) resolvePaths(base string) {
	if !filepath.IsAbs(c.Paths.Root) {
		c.Paths.Root = filepath.Join(base, c.Paths.Root)
	}
	if c.Paths.Output != "" && !filepath.IsAbs(c.Paths.Output) {
		c.Paths.Output = filepath.Join(c.Paths.Root, c.Paths.Output)
	}
	if c.Paths.Graph != "" && !filepath.IsAbs(c.Paths.Graph) {
		c.Paths.Graph = filepath.Join(c.Paths.Root, c.Paths.Graph)
	}
}

// EntryNames returns the configured entry names in order.
func (c *Config) EntryNames() []string {
	names := make([]string, len(c.Entries))
	for index, entry := range c.Entries {
		names[index] = entry.Name
	}
	return names
}

// CandidateDefinitions returns the explicit candidates, or the preset's
// generated ones. A preset gives each candidate Output.ChunkFilename.
func (c *Config) CandidateDefinitions() []candidate.Candidate {
	if c.Preset == PresetExtension {
		return candidate.Combinations(c.EntryNames(), c.Output.ChunkFilename)
	}
	return slices.Clone(c.Candidates)
}

// CandidateList validates the candidates against the entry list.
func (c *Config) CandidateList() (*candidate.List, error) {
	return candidate.NewList(c.EntryNames(), c.CandidateDefinitions())
}

// LoaderRules returns the configured rule table, or the defaults.
func (c *Config) LoaderRules() []loaderrule.Rule {
	if c.Rules == nil {
		return loaderrule.Defaults()
	}
	return c.Rules
}

// Validate runs every configuration-time check and joins all problems.
// Nothing is read from disk.
func (c *Config) Validate() error {
	var errs []error

	if c.Mode != Development && c.Mode != Production {
		errs = append(errs, fmt.Errorf("invalid mode %q: must be %s or %s", c.Mode, Development, Production))
	}
	if c.Paths.Root == "" {
		errs = append(errs, errors.New("paths.root is required"))
	}
	if c.Paths.Output == "" {
		errs = append(errs, errors.New("paths.output is required"))
	}

	switch {
	case len(c.Entries) == 0:
		errs = append(errs, errors.New("entries: at least one entry is required"))
	case len(c.Entries) > modgraph.MaxEntries:
		errs = append(errs, fmt.Errorf("entries: %d entries exceed the limit of %d", len(c.Entries), modgraph.MaxEntries))
	}
	seen := make(map[string]int, len(c.Entries))
	for index, entry := range c.Entries {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("entries[%d]: name is required", index))
			continue
		}
		if first, exists := seen[entry.Name]; exists {
			errs = append(errs, fmt.Errorf("entries[%d]: name %q already used at entries[%d]", index, entry.Name, first))
			continue
		}
		seen[entry.Name] = index
		if entry.Path == "" && c.Paths.Graph == "" {
			errs = append(errs, fmt.Errorf("entries[%d] %q: root is required without paths.graph", index, entry.Name))
		}
	}

	switch c.Preset {
	case "":
	case PresetExtension:
		if len(c.Candidates) > 0 {
			errs = append(errs, errors.New("preset and candidates are mutually exclusive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown preset %q (known: %s)", c.Preset, PresetExtension))
	}
	if _, err := c.CandidateList(); err != nil {
		errs = append(errs, err)
	}

	if _, err := compress.Parse(c.Output.Compression); err != nil {
		errs = append(errs, fmt.Errorf("output.compression: %w", err))
	}
	if !transpile.ValidTarget(c.Output.Target) {
		errs = append(errs, fmt.Errorf("output.target: unknown target %q", c.Output.Target))
	}
	if c.Output.Concurrency < 0 {
		errs = append(errs, errors.New("output.concurrency must not be negative"))
	}
	if _, err := emit.ParseTemplate(c.Output.Filename); err != nil {
		errs = append(errs, fmt.Errorf("output.filename: %w", err))
	}
	if _, err := emit.ParseTemplate(c.Output.ChunkFilename); err != nil {
		errs = append(errs, fmt.Errorf("output.chunk_filename: %w", err))
	}
	for _, definition := range c.CandidateDefinitions() {
		if definition.Filename == "" {
			continue
		}
		if _, err := emit.ParseTemplate(definition.Filename); err != nil {
			errs = append(errs, fmt.Errorf("candidate %q filename: %w", definition.Name, err))
		}
	}
	if _, err := loaderrule.Compile(c.LoaderRules()); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
