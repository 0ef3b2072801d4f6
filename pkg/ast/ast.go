// Package ast defines the in-memory structures produced by the netlist parser:
// circuits, subcircuit definitions, primitive devices, instances and models.
package ast

import (
	"fmt"
	"sort"
	"strings"
)

// GlobalScopeName is the pseudo-name used for the top-level (non-subckt) scope
const GlobalScopeName = "global"

// Position represents a position in the source file
type Position struct {
	File string
	Line int
}

// String returns file:line, or just the line when no file is known
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("line %d", p.Line)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// DeviceKind represents the device family of a component
type DeviceKind int

const (
	KindUnknown DeviceKind = iota
	KindResistor
	KindCapacitor
	KindInductor
	KindMosfet
	KindBJT
	KindDiode
	KindJFET
	KindVoltageSource
	KindCurrentSource
	KindControlledSource
	KindGeneric
	KindInstance
)

var kindNames = map[DeviceKind]string{
	KindResistor:         "resistor",
	KindCapacitor:        "capacitor",
	KindInductor:         "inductor",
	KindMosfet:           "mosfet",
	KindBJT:              "bjt",
	KindDiode:            "diode",
	KindJFET:             "jfet",
	KindVoltageSource:    "vsource",
	KindCurrentSource:    "isource",
	KindControlledSource: "controlled",
	KindGeneric:          "generic",
	KindInstance:         "instance",
}

func (k DeviceKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseDeviceKind maps a family name (as produced by String) back to its kind
func ParseDeviceKind(name string) (DeviceKind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range kindNames {
		if n == name {
			return kind, true
		}
	}
	return KindUnknown, false
}

// IsTransistor reports whether the kind counts as a transistor
func (k DeviceKind) IsTransistor() bool {
	return k == KindMosfet || k == KindBJT
}

// Param is a single key=value attribute. Values are opaque strings and are
// never evaluated.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of parameters, kept in source order
type Params []Param

// Get returns the value for key (case-insensitive)
func (ps Params) Get(key string) (string, bool) {
	for _, p := range ps {
		if strings.EqualFold(p.Key, key) {
			return p.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present (case-insensitive)
func (ps Params) Has(key string) bool {
	_, ok := ps.Get(key)
	return ok
}

// Set replaces the value of an existing key or appends a new one
func (ps *Params) Set(key, value string) {
	for i := range *ps {
		if strings.EqualFold((*ps)[i].Key, key) {
			(*ps)[i].Value = value
			return
		}
	}
	*ps = append(*ps, Param{Key: key, Value: value})
}

// Clone returns a copy of the parameter list
func (ps Params) Clone() Params {
	if ps == nil {
		return nil
	}
	out := make(Params, len(ps))
	copy(out, ps)
	return out
}

// Component is a netlist element inside a scope. It is implemented only by
// *Device and *Instance; consumers are expected to switch exhaustively.
type Component interface {
	GetName() string
	GetNodes() []string
	Family() DeviceKind
	Pos() Position
	component()
}

// Device represents a primitive device (R, C, M, Q, ...)
type Device struct {
	Kind     DeviceKind // Device family
	Prefix   string     // Upper-case prefix letter the line started with
	Name     string     // Instance name as written (or hierarchical after flattening)
	Nodes    []string   // Terminal nets in source order
	Model    string     // Model reference for model-carrying families
	Value    string     // Value/expression for value-carrying families
	Params   Params     // key=value attributes
	Extra    []string   // Trailing tokens that are neither model, value nor key=value
	Position Position   // Where the device was declared
}

func (d *Device) GetName() string    { return d.Name }
func (d *Device) GetNodes() []string { return d.Nodes }
func (d *Device) Family() DeviceKind { return d.Kind }
func (d *Device) Pos() Position      { return d.Position }
func (d *Device) component()         {}

// Clone returns a deep copy of the device
func (d *Device) Clone() *Device {
	c := *d
	c.Nodes = append([]string(nil), d.Nodes...)
	c.Params = d.Params.Clone()
	if d.Extra != nil {
		c.Extra = append([]string(nil), d.Extra...)
	}
	return &c
}

// Instance represents a subcircuit instantiation (X element). SubcktName is a
// lookup key into Circuit.Subckts and may not resolve.
type Instance struct {
	Name       string
	Nodes      []string
	SubcktName string
	Params     Params
	Extra      []string
	CDL        bool // Written with the "/" separator
	Position   Position
}

func (x *Instance) GetName() string    { return x.Name }
func (x *Instance) GetNodes() []string { return x.Nodes }
func (x *Instance) Family() DeviceKind { return KindInstance }
func (x *Instance) Pos() Position      { return x.Position }
func (x *Instance) component()         {}

// Clone returns a deep copy of the instance
func (x *Instance) Clone() *Instance {
	c := *x
	c.Nodes = append([]string(nil), x.Nodes...)
	c.Params = x.Params.Clone()
	if x.Extra != nil {
		c.Extra = append([]string(nil), x.Extra...)
	}
	return &c
}

// Model represents a .MODEL declaration
type Model struct {
	Name     string
	Type     string
	Params   Params
	Position Position
}

// Scope is anything that owns an ordered component list: the global scope of
// a circuit or a subckt body
type Scope interface {
	ScopeName() string
	ScopePorts() []string
	ScopeComponents() []Component
	IsGlobal() bool
}

// Subckt represents a .SUBCKT definition
type Subckt struct {
	Name       string
	Ports      []string // Port order defines positional mapping with instance nodes
	Params     Params   // Default parameters from the .SUBCKT line and .PARAM inside
	Components []Component
	Position   Position
}

func (s *Subckt) ScopeName() string            { return s.Name }
func (s *Subckt) ScopePorts() []string         { return s.Ports }
func (s *Subckt) ScopeComponents() []Component { return s.Components }
func (s *Subckt) IsGlobal() bool               { return false }

// AddComponent appends a component to the subckt body
func (s *Subckt) AddComponent(c Component) {
	s.Components = append(s.Components, c)
}

// IsEmpty reports whether the subckt has no body (a leaf cell)
func (s *Subckt) IsEmpty() bool {
	return len(s.Components) == 0
}

// Circuit is the root of a parsed netlist
type Circuit struct {
	Name       string
	Components []Component // Global-scope components
	Subckts    map[string]*Subckt
	Models     map[string]*Model
	Params     Params   // Global .PARAM values
	Globals    []string // Nets declared with .GLOBAL
	Includes   []string // Paths named by .INCLUDE / .LIB, in order
	order      []string
	modelOrder []string
}

// NewCircuit creates an empty circuit
func NewCircuit(name string) *Circuit {
	return &Circuit{
		Name:    name,
		Subckts: make(map[string]*Subckt),
		Models:  make(map[string]*Model),
	}
}

func (c *Circuit) ScopeName() string            { return GlobalScopeName }
func (c *Circuit) ScopePorts() []string         { return nil }
func (c *Circuit) ScopeComponents() []Component { return c.Components }
func (c *Circuit) IsGlobal() bool               { return true }

// AddComponent appends a component to the global scope
func (c *Circuit) AddComponent(comp Component) {
	c.Components = append(c.Components, comp)
}

// AddSubckt registers a subckt definition. Names must be unique.
func (c *Circuit) AddSubckt(s *Subckt) error {
	if existing, ok := c.Subckts[s.Name]; ok {
		return fmt.Errorf("subckt %q redefined (first defined at %s)", s.Name, existing.Position)
	}
	c.Subckts[s.Name] = s
	c.order = append(c.order, s.Name)
	return nil
}

// Subckt looks up a subckt definition by name
func (c *Circuit) Subckt(name string) (*Subckt, bool) {
	s, ok := c.Subckts[name]
	return s, ok
}

// SubcktNames returns subckt names in definition order
func (c *Circuit) SubcktNames() []string {
	return append([]string(nil), c.order...)
}

// AddModel registers a model, replacing any earlier definition with the same
// name. It reports whether a definition was replaced.
func (c *Circuit) AddModel(m *Model) bool {
	_, replaced := c.Models[m.Name]
	if !replaced {
		c.modelOrder = append(c.modelOrder, m.Name)
	}
	c.Models[m.Name] = m
	return replaced
}

// Model looks up a model by name
func (c *Circuit) Model(name string) (*Model, bool) {
	m, ok := c.Models[name]
	return m, ok
}

// ModelNames returns model names in declaration order
func (c *Circuit) ModelNames() []string {
	return append([]string(nil), c.modelOrder...)
}

// Merge folds the definitions of other (typically an included file) into c.
// Global components are appended, subckt redefinitions are an error.
func (c *Circuit) Merge(other *Circuit) error {
	for _, name := range other.order {
		if err := c.AddSubckt(other.Subckts[name]); err != nil {
			return err
		}
	}
	for _, name := range other.modelOrder {
		c.AddModel(other.Models[name])
	}
	c.Components = append(c.Components, other.Components...)
	for _, p := range other.Params {
		c.Params.Set(p.Key, p.Value)
	}
	c.Globals = appendUnique(c.Globals, other.Globals...)
	c.Includes = append(c.Includes, other.Includes...)
	return nil
}

// Instances returns every instance in the global scope and in all subckt
// bodies, keyed by the owning scope name
func (c *Circuit) Instances() map[string][]*Instance {
	out := make(map[string][]*Instance)
	collect := func(owner string, comps []Component) {
		for _, comp := range comps {
			if inst, ok := comp.(*Instance); ok {
				out[owner] = append(out[owner], inst)
			}
		}
	}
	collect(GlobalScopeName, c.Components)
	for _, name := range c.order {
		collect(name, c.Subckts[name].Components)
	}
	return out
}

// Stats summarises the size of the parsed tree
func (c *Circuit) Stats() (subckts, models, components int) {
	components = len(c.Components)
	for _, s := range c.Subckts {
		components += len(s.Components)
	}
	return len(c.Subckts), len(c.Models), components
}

// SortedKeys returns the keys of a count map in ascending order
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if strings.EqualFold(existing, item) {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
