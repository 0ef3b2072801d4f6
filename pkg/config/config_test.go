package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netlist-analyzer/pkg/ast"
	"netlist-analyzer/pkg/parser"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ".", cfg.Separator)
	assert.Equal(t, []string{"0"}, cfg.GlobalNets)
	assert.Equal(t, []string{"GND"}, cfg.GroundNets)
	require.NotNil(t, cfg.KeepLeafCells)
	assert.True(t, *cfg.KeepLeafCells)

	opts := cfg.FlattenOptions()
	assert.Equal(t, ".", opts.Separator)
	assert.Equal(t, []string{"GND"}, opts.GroundNets)
	assert.True(t, opts.KeepLeafCells)

	table, err := cfg.DeviceTable()
	require.NoError(t, err)
	assert.Equal(t, parser.DefaultDeviceTable(), table)
}

func TestParse(t *testing.T) {
	content := `
separator: /
globalNets: ["0", "vdd!", "gnd!"]
groundNets: [vss, agnd]
keepLeafCells: false
topCell: chip
devices:
  M:
    family: mosfet
    nodes: 3
    trailer: model
  B:
    family: generic
    nodes: 2
    trailer: expr
`
	cfg, err := Parse([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, "/", cfg.Separator)
	assert.Equal(t, []string{"0", "vdd!", "gnd!"}, cfg.GlobalNets)
	assert.Equal(t, "chip", cfg.TopCell)

	opts := cfg.FlattenOptions()
	assert.Equal(t, "/", opts.Separator)
	assert.False(t, opts.KeepLeafCells)
	assert.Equal(t, []string{"0", "vdd!", "gnd!"}, opts.GlobalNets)
	assert.Equal(t, []string{"vss", "agnd"}, opts.GroundNets)

	table, err := cfg.DeviceTable()
	require.NoError(t, err)
	m, ok := table.Lookup('M')
	require.True(t, ok)
	assert.Equal(t, parser.DeviceSpec{Kind: ast.KindMosfet, Nodes: 3, Trailer: parser.TrailerModel}, m)
	b, ok := table.Lookup('b')
	require.True(t, ok)
	assert.Equal(t, ast.KindGeneric, b.Kind)

	// untouched families keep their defaults
	r, _ := table.Lookup('R')
	assert.Equal(t, 2, r.Nodes)
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("topCell: chip\n"))
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Separator)
	assert.Equal(t, []string{"0"}, cfg.GlobalNets)
	assert.True(t, *cfg.KeepLeafCells)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "seperator: /\n"},
		{"bad yaml", "separator: [\n"},
		{"unknown family", "devices:\n  M: {family: transistor, nodes: 4}\n"},
		{"reserved prefix", "devices:\n  X: {family: generic, nodes: 2}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	netlistDir := t.TempDir()
	workDir := t.TempDir()

	t.Run("no file", func(t *testing.T) {
		cfg, path, err := Load(netlistDir, workDir)
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	require.NoError(t, os.WriteFile(filepath.Join(workDir, FileName), []byte("separator: _\n"), 0644))

	t.Run("fallback directory", func(t *testing.T) {
		cfg, path, err := Load("", netlistDir, workDir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(workDir, FileName), path)
		assert.Equal(t, "_", cfg.Separator)
	})

	require.NoError(t, os.WriteFile(filepath.Join(netlistDir, FileName), []byte("separator: /\n"), 0644))

	t.Run("first directory wins", func(t *testing.T) {
		cfg, path, err := Load(netlistDir, workDir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(netlistDir, FileName), path)
		assert.Equal(t, "/", cfg.Separator)
	})

	t.Run("invalid file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("keepLeafCells: maybe\n"), 0644))
		_, _, err := Load(dir)
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg := DefaultConfig()
	cfg.TopCell = "chip"
	cfg.Devices = map[string]DeviceConfig{"B": {Family: "generic", Nodes: 2, Trailer: "expr"}}
	require.NoError(t, cfg.Save(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# .netlist.yaml configuration file")

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
