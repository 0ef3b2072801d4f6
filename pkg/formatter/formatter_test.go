package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netlist-analyzer/pkg/analyzer"
	"netlist-analyzer/pkg/ast"
	"netlist-analyzer/pkg/parser"
	"netlist-analyzer/pkg/validator"
)

const testNetlist = `.model nch nmos level=1
.subckt nfet d g s b
.ends
.subckt inv a y vdd vss
MP y a vdd vdd pch w=2u l=0.18u
MN y a vss vss nch w=1u l=0.18u
.ends
.subckt top in out vdd
X1 in mid vdd 0 inv
X2 mid out vdd 0 inv
XL out in 0 0 nfet W=1u L=1u
XB in out STDCELL
R1 in out 10k
.ends
`

func flattenTest(t *testing.T) (*ast.Circuit, *analyzer.FlatCircuit) {
	t.Helper()
	c, err := parser.New().Parse("test.sp", testNetlist)
	require.NoError(t, err)
	root, err := analyzer.FindTopCell(c, "top")
	require.NoError(t, err)
	flat, err := analyzer.Flatten(c, root, analyzer.DefaultOptions())
	require.NoError(t, err)
	return c, flat
}

func TestFormatSpice(t *testing.T) {
	_, flat := flattenTest(t)
	out := New().FormatSpice(flat)

	expected := `* flattened from top
MX1.MP mid in vdd vdd pch w=2u l=0.18u
MX1.MN mid in 0 0 nch w=1u l=0.18u
MX2.MP out mid vdd vdd pch w=2u l=0.18u
MX2.MN out mid 0 0 nch w=1u l=0.18u
R1 in out 10k
XL out in 0 0 nfet W=1u L=1u
* unresolved: XB (STDCELL) in out
.end
`
	assert.Equal(t, expected, out)
}

func TestFormatSpice_ReparsesToSameDevices(t *testing.T) {
	_, flat := flattenTest(t)
	out := New().WithLineWidth(20).FormatSpice(flat)
	assert.Contains(t, out, "\n+ ")

	c, err := parser.New().Parse("", out)
	require.NoError(t, err)

	var devices []*ast.Device
	for _, comp := range c.Components {
		if dev, ok := comp.(*ast.Device); ok {
			devices = append(devices, dev)
		}
	}
	require.Len(t, devices, len(flat.Devices))
	for i, dev := range devices {
		assert.Equal(t, SpiceName(flat.Devices[i]), dev.Name)
		assert.Equal(t, flat.Devices[i].Kind, dev.Kind)
		assert.Equal(t, flat.Devices[i].Nodes, dev.Nodes)
		assert.Equal(t, flat.Devices[i].Params, dev.Params)
	}
}

func TestSpiceName(t *testing.T) {
	assert.Equal(t, "R1", SpiceName(&ast.Device{Name: "R1", Prefix: "R"}))
	assert.Equal(t, "c2", SpiceName(&ast.Device{Name: "c2", Prefix: "C"}))
	assert.Equal(t, "MX1.M3", SpiceName(&ast.Device{Name: "X1.M3", Prefix: "M"}))
	assert.Equal(t, "Xa.b", SpiceName(&ast.Device{Name: "Xa.b"}))
}

func TestWrap(t *testing.T) {
	f := New().WithLineWidth(10)
	assert.Equal(t, "R1 a b\n+ 1000k\n", f.wrap([]string{"R1", "a", "b", "1000k"}))
	assert.Equal(t, "R1 a b 1000k\n", New().WithLineWidth(0).wrap([]string{"R1", "a", "b", "1000k"}))
}

func TestFormatTree(t *testing.T) {
	c, _ := flattenTest(t)
	root, err := analyzer.FindTopCell(c, "top")
	require.NoError(t, err)

	out := New().FormatTree(analyzer.BuildHierarchy(c, root))
	expected := `top
├── X1 (inv)
├── X2 (inv)
├── XB (STDCELL) [unresolved]
└── XL (nfet)
`
	assert.Equal(t, expected, out)
}

func TestFormatTree_Nested(t *testing.T) {
	tree := &analyzer.HierarchyNode{
		Name: "chip",
		Children: []*analyzer.HierarchyNode{
			{Name: "Xa", SubcktName: "blk", Resolved: true, Children: []*analyzer.HierarchyNode{
				{Name: "Xi", SubcktName: "inv", Resolved: true},
			}},
			{Name: "Xb", SubcktName: "chip", Resolved: true, Cycle: true},
		},
	}
	expected := `chip
├── Xa (blk)
│   └── Xi (inv)
└── Xb (chip) [cycle]
`
	assert.Equal(t, expected, New().FormatTree(tree))
}

func TestFormatCounts(t *testing.T) {
	out := New().FormatCounts("model", map[string]int{"pch": 2, "nch": 3})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "MODEL"))
	assert.True(t, strings.HasPrefix(lines[1], "nch"))
	assert.True(t, strings.HasSuffix(lines[1], "3"))
	assert.True(t, strings.HasPrefix(lines[3], "TOTAL"))
	assert.True(t, strings.HasSuffix(lines[3], "5"))
}

func TestKindCounts(t *testing.T) {
	counts := KindCounts(map[ast.DeviceKind]int{ast.KindMosfet: 2, ast.KindInstance: 1})
	assert.Equal(t, map[string]int{"mosfet": 2, "instance": 1}, counts)
}

func TestFormatList(t *testing.T) {
	assert.Equal(t, "    a\n    b\n", New().FormatList([]string{"a", "b"}))
	assert.Empty(t, New().FormatList(nil))
}

func TestFormatCircuit(t *testing.T) {
	c, _ := flattenTest(t)
	out := New().FormatCircuit(c)

	assert.Contains(t, out, "Circuit: test")
	assert.Contains(t, out, "Subckts: 3, Models: 1, Components: 7")
	assert.Contains(t, out, ".subckt inv a y vdd vss (2 components)")
	assert.Contains(t, out, "X1 in mid vdd 0 -> inv")
	assert.Contains(t, out, "nch (nmos)")
	assert.NotContains(t, out, "global (")
}

func TestFlatReport(t *testing.T) {
	_, flat := flattenTest(t)
	report := NewFlatReport(flat)

	assert.Equal(t, "top", report.Root)
	assert.Equal(t, 5, report.Transistors)
	require.Len(t, report.Devices, 5)
	assert.Equal(t, "mosfet", report.Devices[0].Kind)
	assert.Equal(t, []ReportParam{{Key: "w", Value: "2u"}, {Key: "l", Value: "0.18u"}}, report.Devices[0].Params)
	require.Len(t, report.Unresolved, 1)
	assert.Equal(t, "STDCELL", report.Unresolved[0].Subckt)
	require.Len(t, report.Leaves, 1)
	assert.Empty(t, report.Warnings)

	v, err := validator.New()
	require.NoError(t, err)
	assert.NoError(t, v.ValidateReport(report))

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"warnings":[]`)
}

func TestFlatReport_Empty(t *testing.T) {
	report := NewFlatReport(&analyzer.FlatCircuit{Root: "global", Separator: "."})
	v, err := validator.New()
	require.NoError(t, err)
	assert.NoError(t, v.ValidateReport(report))
}

func TestFormatSubckt(t *testing.T) {
	c, err := parser.New().Parse("test.sp", `.subckt cell a y vdd vss wp=2u
X1 a m vdd vss / inv
MN y m vss vss nch w=1u l=0.18u
.ends
`)
	require.NoError(t, err)
	cell, ok := c.Subckt("cell")
	require.True(t, ok)

	expected := `.subckt cell a y vdd vss wp=2u
X1 a m vdd vss / inv
MN y m vss vss nch w=1u l=0.18u
.ends cell
`
	assert.Equal(t, expected, New().FormatSubckt(cell))

	again, err := parser.New().Parse("again.sp", New().FormatSubckt(cell))
	require.NoError(t, err)
	reparsed, ok := again.Subckt("cell")
	require.True(t, ok)
	assert.Equal(t, cell.Ports, reparsed.Ports)
	assert.Len(t, reparsed.Components, 2)
}

func TestFormatModel(t *testing.T) {
	c, _ := flattenTest(t)
	m, ok := c.Model("nch")
	require.True(t, ok)
	assert.Equal(t, ".model nch nmos level=1\n", New().FormatModel(m))
}
