// Package config loads and writes the .netlist.yaml project file
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	"netlist-analyzer/pkg/analyzer"
	"netlist-analyzer/pkg/ast"
	"netlist-analyzer/pkg/parser"
	"netlist-analyzer/pkg/validator"
)

// FileName is the configuration file looked up next to a netlist
const FileName = ".netlist.yaml"

// Config is the top-level configuration for netlist-analyzer
type Config struct {
	// Separator joins instance names in flattened paths
	Separator string `yaml:"separator,omitempty" json:"separator,omitempty"`

	// GlobalNets are never prefixed during flattening
	GlobalNets []string `yaml:"globalNets,omitempty" json:"globalNets,omitempty"`

	// GroundNets are renamed to the ground node 0 during flattening
	GroundNets []string `yaml:"groundNets,omitempty" json:"groundNets,omitempty"`

	// KeepLeafCells records instances of empty subckts as leaf cells
	KeepLeafCells *bool `yaml:"keepLeafCells,omitempty" json:"keepLeafCells,omitempty"`

	// TopCell selects the flatten root when no --top flag is given
	TopCell string `yaml:"topCell,omitempty" json:"topCell,omitempty"`

	// Devices overrides or extends the device table, keyed by prefix letter
	Devices map[string]DeviceConfig `yaml:"devices,omitempty" json:"devices,omitempty"`
}

// DeviceConfig describes one device family
type DeviceConfig struct {
	Family  string `yaml:"family" json:"family"`
	Nodes   int    `yaml:"nodes" json:"nodes"`
	Trailer string `yaml:"trailer,omitempty" json:"trailer,omitempty"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Separator:     ".",
		GlobalNets:    []string{"0"},
		GroundNets:    []string{"GND"},
		KeepLeafCells: boolPtr(true),
	}
}

func boolPtr(v bool) *bool {
	return &v
}

// Load finds and loads the configuration file. Each directory is searched
// in order; the first FileName found wins. With no file the defaults are
// returned and path is empty.
func Load(dirs ...string) (cfg *Config, path string, err error) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, FileName)
		if _, statErr := os.Stat(candidate); statErr == nil {
			cfg, err = LoadFile(candidate)
			return cfg, candidate, err
		}
	}
	return DefaultConfig(), "", nil
}

// LoadFile reads a configuration file and merges it over the defaults
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(content)
}

// Parse decodes YAML configuration, merges it over the defaults and checks
// it against the schema
func Parse(content []byte) (*Config, error) {
	var raw Config
	if err := yaml.UnmarshalStrict(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	v, err := validator.New()
	if err != nil {
		return nil, err
	}
	if err := v.ValidateConfig(&raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg := DefaultConfig()
	cfg.merge(&raw)
	return cfg, nil
}

func (c *Config) merge(other *Config) {
	if other.Separator != "" {
		c.Separator = other.Separator
	}
	if len(other.GlobalNets) > 0 {
		c.GlobalNets = append([]string(nil), other.GlobalNets...)
	}
	if len(other.GroundNets) > 0 {
		c.GroundNets = append([]string(nil), other.GroundNets...)
	}
	if other.KeepLeafCells != nil {
		c.KeepLeafCells = boolPtr(*other.KeepLeafCells)
	}
	if other.TopCell != "" {
		c.TopCell = other.TopCell
	}
	for prefix, dev := range other.Devices {
		if c.Devices == nil {
			c.Devices = make(map[string]DeviceConfig)
		}
		c.Devices[prefix] = dev
	}
}

// Save writes the configuration as YAML with a short header
func (c *Config) Save(path string) error {
	body, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	var content strings.Builder
	content.WriteString(`# .netlist.yaml configuration file
# Generated by netlist-analyzer init
#
# - separator: joins instance names in flattened device and net names
# - globalNets: nets that keep their name at every level (0 is ground)
# - groundNets: other names for ground, renamed to 0 at every level
# - keepLeafCells: report instances of empty subckts as leaf cells
# - topCell: default root for flatten, stats and tree
# - devices: per-prefix node counts, e.g. {M: {family: mosfet, nodes: 4, trailer: model}}

`)
	content.Write(body)

	if err := os.WriteFile(path, []byte(content.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// DeviceTable returns the parser device table with the configured overrides
// applied
func (c *Config) DeviceTable() (parser.DeviceTable, error) {
	table := parser.DefaultDeviceTable()

	prefixes := make([]string, 0, len(c.Devices))
	for prefix := range c.Devices {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		dev := c.Devices[prefix]
		if len(prefix) != 1 {
			return nil, fmt.Errorf("device prefix %q must be a single letter", prefix)
		}
		kind, ok := ast.ParseDeviceKind(dev.Family)
		if !ok || kind == ast.KindInstance {
			return nil, fmt.Errorf("device prefix %s: unknown family %q", prefix, dev.Family)
		}
		trailer, err := parser.ParseTrailer(dev.Trailer)
		if err != nil {
			return nil, fmt.Errorf("device prefix %s: %w", prefix, err)
		}
		if err := table.Set(prefix[0], parser.DeviceSpec{Kind: kind, Nodes: dev.Nodes, Trailer: trailer}); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// FlattenOptions converts the configuration into analyzer options
func (c *Config) FlattenOptions() analyzer.Options {
	opts := analyzer.DefaultOptions()
	if c.Separator != "" {
		opts.Separator = c.Separator
	}
	if len(c.GlobalNets) > 0 {
		opts.GlobalNets = append([]string(nil), c.GlobalNets...)
	}
	if len(c.GroundNets) > 0 {
		opts.GroundNets = append([]string(nil), c.GroundNets...)
	}
	if c.KeepLeafCells != nil {
		opts.KeepLeafCells = *c.KeepLeafCells
	}
	return opts
}
