package analyzer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netlist-analyzer/pkg/ast"
)

const classificationNetlist = `
.subckt nfet d g s b
.ends
.subckt pmos_hvt d g s b
.ends
.subckt my_bjt c b e
.ends
.subckt esd_diode n p
.ends
.subckt simple_block a b
R1 a b 100
.ends
.subckt top
* leaf with W and L
X1 1 2 3 0 nfet W=1u L=0.1u
X2 1 2 3 0 pmos_hvt w=2u l=0.2u
* name matches but no W/L
X3 1 2 3 0 nfet M=2
X4 1 2 3 my_bjt
X5 1 2 esd_diode
X6 1 2 simple_block
M1 1 2 3 0 nfet_model
Q1 1 2 3 npn_model
.ends
`

func TestCountComponents(t *testing.T) {
	c := mustParse(t, libraryNetlist+"M0 d g 0 0 nch\nR0 d 0 1k\nXi d y vdd 0 inv\n")

	inv, _ := c.Subckt("inv")
	assert.Equal(t, map[ast.DeviceKind]int{ast.KindMosfet: 2}, CountComponents(inv))

	buf, _ := c.Subckt("buf")
	assert.Equal(t, map[ast.DeviceKind]int{ast.KindInstance: 2}, CountComponents(buf))

	assert.Equal(t, map[ast.DeviceKind]int{
		ast.KindMosfet:   1,
		ast.KindResistor: 1,
		ast.KindInstance: 1,
	}, CountComponents(c))
}

func TestCountTransistors(t *testing.T) {
	c := mustParse(t, classificationNetlist)
	flat := flattenTop(t, c, "top")
	// M1, Q1 and the leaf cells X1, X2, X4
	assert.Equal(t, 5, CountTransistors(flat))

	c = mustParse(t, libraryNetlist)
	flat = flattenTop(t, c, "ring")
	// buf holds two inverters, ring holds one buf and one inv
	assert.Equal(t, 6, CountTransistors(flat))

	t.Run("lvs style leaf transistors", func(t *testing.T) {
		c := mustParse(t, `
.subckt nfet d g s b
.ends
.subckt pfet_lvt d g s b
.ends
.subckt inv a y vdd vss
X1 y a vss vss nfet W=1u L=0.1u
X2 y a vdd vdd pfet_lvt W=2u L=0.1u
.ends
`)
		flat := flattenTop(t, c, "inv")
		assert.Equal(t, 2, CountTransistors(flat))

		assert.Equal(t, HierarchicalStats(flat)[ast.KindMosfet.String()], CountTransistors(flat))
	})

	t.Run("unresolved transistor names", func(t *testing.T) {
		c := mustParse(t, `.subckt top a b
X1 a b 0 0 nfet W=1u L=1u
X2 a b my_block
.ends
`)
		flat := flattenTop(t, c, "top")
		require.Len(t, flat.Unresolved, 2)
		assert.Equal(t, 1, CountTransistors(flat))
	})
}

func TestModelUsage(t *testing.T) {
	c := mustParse(t, libraryNetlist)
	flat := flattenTop(t, c, "ring")
	assert.Equal(t, map[string]int{"pch": 3, "nch": 3}, ModelUsage(flat))

	c = mustParse(t, "R1 a b 1\nC1 a b 1p")
	flat = flattenTop(t, c, "")
	assert.Empty(t, ModelUsage(flat))
}

func TestHierarchicalStats(t *testing.T) {
	c := mustParse(t, classificationNetlist)
	flat := flattenTop(t, c, "")

	stats := HierarchicalStats(flat)
	assert.Equal(t, 3, stats["mosfet"])
	assert.Equal(t, 2, stats["bjt"])
	assert.Equal(t, 1, stats["diode"])
	assert.Equal(t, 1, stats["instance"])
	assert.Equal(t, 1, stats["resistor"])
}

func TestHierarchicalStats_ThreeLevels(t *testing.T) {
	input := `.subckt leaf a b
R1 a b 100
.ends
.subckt sub x y
X1 x mid leaf
R2 mid y 200
.ends
Xtop 1 0 sub
`
	c := mustParse(t, input)
	assert.Equal(t, map[ast.DeviceKind]int{ast.KindInstance: 1}, CountComponents(c))

	flat := flattenTop(t, c, "")
	assert.Equal(t, map[string]int{"resistor": 2}, HierarchicalStats(flat))
}

func TestClassify(t *testing.T) {
	wl := ast.Params{{Key: "W", Value: "1u"}, {Key: "l", Value: "1u"}}

	tests := []struct {
		name   string
		subckt string
		params ast.Params
		kind   ast.DeviceKind
	}{
		{"nfet with W/L", "nfet", wl, ast.KindMosfet},
		{"upper case mos", "NMOS_LVT", wl, ast.KindMosfet},
		{"fet without W/L", "nfet", nil, ast.KindInstance},
		{"npn", "npn_v", nil, ast.KindBJT},
		{"pnp", "PNP10", nil, ast.KindBJT},
		{"diode", "esd_diode", nil, ast.KindDiode},
		{"plain cell", "nand2", wl, ast.KindInstance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, Classify(tt.subckt, tt.params))
		})
	}
}

func TestCellUsage(t *testing.T) {
	c := mustParse(t, classificationNetlist+"Xext a b STDCELL\n")
	flat := flattenTop(t, c, "top")
	assert.Equal(t, map[string]int{
		"nfet":      2,
		"pmos_hvt":  1,
		"my_bjt":    1,
		"esd_diode": 1,
	}, CellUsage(flat))

	root, err := FindTopCell(c, "")
	require.NoError(t, err)
	flat, err = Flatten(c, root, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"STDCELL": 1}, CellUsage(flat))
}

func TestFindModelUsers(t *testing.T) {
	input := `.model nch nmos level=1
.model unused nmos level=1
` + libraryNetlist + "M0 d g 0 0 nch\n"
	c := mustParse(t, input)

	tests := []struct {
		name     string
		model    string
		expected []string
	}{
		{"device model", "nch", []string{"global", "inv"}},
		{"model without card", "pch", []string{"inv"}},
		{"subckt reference", "inv", []string{"buf", "ring"}},
		{"direct only", "buf", []string{"ring"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := FindModelUsers(c, tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, users)
		})
	}

	t.Run("declared but unused", func(t *testing.T) {
		users, err := FindModelUsers(c, "unused")
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := FindModelUsers(c, "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestBuildHierarchy(t *testing.T) {
	c := mustParse(t, libraryNetlist+".subckt loop a\nXself a loop\n.ends\n")

	t.Run("subckt root", func(t *testing.T) {
		ring, _ := FindTopCell(c, "ring")
		tree := BuildHierarchy(c, ring)
		assert.Equal(t, "ring", tree.Name)
		require.Len(t, tree.Children, 2)
		assert.Equal(t, "X1", tree.Children[0].Name)
		assert.Equal(t, "buf", tree.Children[0].SubcktName)
		assert.Len(t, tree.Children[0].Children, 2)
		assert.Empty(t, tree.Children[1].Children)

		var visited []string
		tree.Walk(func(node *HierarchyNode, depth int) {
			visited = append(visited, node.Name)
		})
		assert.Equal(t, []string{"ring", "X1", "X1", "X2", "X2"}, visited)
	})

	t.Run("cycle is marked", func(t *testing.T) {
		loop, _ := FindTopCell(c, "loop")
		tree := BuildHierarchy(c, loop)
		require.Len(t, tree.Children, 1)
		assert.True(t, tree.Children[0].Cycle)
		assert.Empty(t, tree.Children[0].Children)
	})

	t.Run("global root with black box", func(t *testing.T) {
		g := mustParse(t, "Xb a b MISSING\nXa a b spare\n.subckt spare a y\nR1 a y 1\n.ends")
		tree := BuildHierarchy(g, g)
		assert.Equal(t, "test", tree.Name)
		require.Len(t, tree.Children, 2)
		assert.Equal(t, "Xa", tree.Children[0].Name)
		assert.True(t, tree.Children[0].Resolved)
		assert.False(t, tree.Children[1].Resolved)
	})
}

func TestDependencies(t *testing.T) {
	c := mustParse(t, libraryNetlist+".subckt loop a\nXself a loop\n.ends\n.subckt wrap a\nXm a MISSING\nXr a vdd 0 / ring\n.ends\n")

	deps, err := Dependencies(c, "ring")
	require.NoError(t, err)
	assert.Equal(t, []string{"inv", "buf", "ring"}, deps)

	deps, err = Dependencies(c, "wrap")
	require.NoError(t, err)
	assert.Equal(t, []string{"inv", "buf", "ring", "wrap"}, deps)

	_, err = Dependencies(c, "loop")
	assert.True(t, errors.Is(err, ErrCyclicHierarchy))

	_, err = Dependencies(c, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, []string{"nch", "pch"}, ModelsUsed(c, []string{"inv", "buf", "missing"}))
	assert.Empty(t, ModelsUsed(c, []string{"buf"}))
}

func TestMaxDepth(t *testing.T) {
	c := mustParse(t, libraryNetlist)
	assert.Equal(t, 2, MaxDepth(flattenTop(t, c, "ring")))
	assert.Equal(t, 0, MaxDepth(flattenTop(t, c, "spare")))

	c = mustParse(t, classificationNetlist)
	assert.Equal(t, 1, MaxDepth(flattenTop(t, c, "top")))

	assert.Equal(t, 0, MaxDepth(&FlatCircuit{Separator: "."}))

	t.Run("dotted local names", func(t *testing.T) {
		c := mustParse(t, `.subckt cell a b
R.1 a b 1
R.2.x a b 1
.ends
.subckt top a b
X1 a b cell
.ends
`)
		assert.Equal(t, 1, MaxDepth(flattenTop(t, c, "top")))
	})
}
