package abc

import (
	"sort"
	"strconv"
)

// ClassDef pairs an Instance with the Class at the same index.
type ClassDef struct {
	Interfaces     []uint32
	InstanceTraits []Trait
	StaticTraits   []Trait
	Index          int
	Name           uint32
	Super          uint32
	ProtectedNs    uint32
	Init           uint32 // instance initializer
	StaticInit     uint32
	Flags          InstanceFlags
}

// IsInterface reports whether the class declares an interface.
func (c *ClassDef) IsInterface() bool { return c.Flags&ClassInterface != 0 }

// IsSealed reports whether instances reject dynamic properties.
func (c *ClassDef) IsSealed() bool { return c.Flags&ClassSealed != 0 }

// IsFinal reports whether the class cannot be extended.
func (c *ClassDef) IsFinal() bool { return c.Flags&ClassFinal != 0 }

// Model is the assembled, read-only view of one ABC blob that the
// renderers consume.
type Model struct {
	Pool     *Pool
	Methods  []MethodInfo
	Metadata []Metadata
	Classes  []ClassDef
	Scripts  []Script
	Bodies   []MethodBody

	labels []string
	bodyOf map[uint32]int
	Minor  uint16
	Major  uint16
}

// OpcodeCount is one row of an opcode histogram. Bytes sums the encoded
// size of the instructions, operands included.
type OpcodeCount struct {
	Name  string
	Count int
	Bytes int
}

// Share returns the row's percentage of total code bytes.
func (c OpcodeCount) Share(total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(c.Bytes) * 100 / float64(total)
}

// TotalBytes sums Bytes over a histogram.
func TotalBytes(h []OpcodeCount) int {
	n := 0
	for _, c := range h {
		n += c.Bytes
	}
	return n
}

// Assemble builds the model from decoded records. It pairs instances
// with classes and names every method after its first owner.
func Assemble(f *File) *Model {
	m := &Model{
		Pool:     f.Pool,
		Methods:  f.Methods,
		Metadata: f.Metadata,
		Scripts:  f.Scripts,
		Bodies:   f.Bodies,
		Minor:    f.Minor,
		Major:    f.Major,
		bodyOf:   make(map[uint32]int, len(f.Bodies)),
	}

	m.Classes = make([]ClassDef, len(f.Instances))
	for i := range f.Instances {
		in := &f.Instances[i]
		c := &m.Classes[i]
		c.Index = i
		c.Name = in.Name
		c.Super = in.Super
		c.Flags = in.Flags
		c.ProtectedNs = in.ProtectedNs
		c.Interfaces = in.Interfaces
		c.Init = in.Init
		c.InstanceTraits = in.Traits
		if i < len(f.Classes) {
			c.StaticInit = f.Classes[i].Init
			c.StaticTraits = f.Classes[i].Traits
		}
	}

	for i := range m.Bodies {
		if _, dup := m.bodyOf[m.Bodies[i].Method]; !dup {
			m.bodyOf[m.Bodies[i].Method] = i
		}
	}

	m.labels = m.assignLabels()
	return m
}

func (m *Model) assignLabels() []string {
	labels := make([]string, len(m.Methods))
	set := func(method uint32, label string) {
		if int(method) < len(labels) && labels[method] == "" {
			labels[method] = label
		}
	}
	traitLabels := func(owner string, traits []Trait) {
		for i := range traits {
			t := &traits[i]
			local := m.Pool.LocalName(t.Name)
			switch t.Kind {
			case TraitMethod, TraitFunction:
				set(t.Method, owner+local)
			case TraitGetter:
				set(t.Method, owner+"get "+local)
			case TraitSetter:
				set(t.Method, owner+"set "+local)
			}
		}
	}

	for i := range m.Classes {
		c := &m.Classes[i]
		name := m.Pool.ResolveName(c.Name)
		set(c.Init, name)
		set(c.StaticInit, name+"$cinit")
		traitLabels(name+"/", c.InstanceTraits)
		traitLabels(name+"$/", c.StaticTraits)
	}
	for i := range m.Scripts {
		s := &m.Scripts[i]
		if len(m.Methods) > 0 {
			set(s.Init, "script"+strconv.Itoa(i)+"$init")
		}
		for j := range s.Traits {
			t := &s.Traits[j]
			name := m.Pool.ResolveName(t.Name)
			switch t.Kind {
			case TraitMethod, TraitFunction:
				set(t.Method, name)
			case TraitGetter:
				set(t.Method, "get "+name)
			case TraitSetter:
				set(t.Method, "set "+name)
			}
		}
	}

	for i := range labels {
		if labels[i] != "" {
			continue
		}
		label := "method" + strconv.Itoa(i)
		if dbg := m.Pool.String(m.Methods[i].Name); dbg != "" {
			label += "[" + dbg + "]"
		}
		labels[i] = label
	}
	return labels
}

// MethodLabel returns the display label of method i.
func (m *Model) MethodLabel(i uint32) string {
	if int(i) >= len(m.labels) {
		return "method" + strconv.FormatUint(uint64(i), 10)
	}
	return m.labels[i]
}

// BodyFor returns the body of method i, if it has one.
func (m *Model) BodyFor(i uint32) (*MethodBody, bool) {
	idx, ok := m.bodyOf[i]
	if !ok {
		return nil, false
	}
	return &m.Bodies[idx], true
}

// ClassName returns the qualified name of class i.
func (m *Model) ClassName(i uint32) string {
	if int(i) >= len(m.Classes) {
		return "class" + strconv.FormatUint(uint64(i), 10)
	}
	return m.Pool.ResolveName(m.Classes[i].Name)
}

// Method returns method info i.
func (m *Model) Method(i uint32) (*MethodInfo, bool) {
	if int(i) >= len(m.Methods) {
		return nil, false
	}
	return &m.Methods[i], true
}

// Diagnostics returns the bodies whose instructions failed to decode or
// contain unknown opcodes.
func (m *Model) Diagnostics() []*MethodBody {
	var out []*MethodBody
	for i := range m.Bodies {
		if m.Bodies[i].Err != nil || len(m.Bodies[i].Warnings) > 0 {
			out = append(out, &m.Bodies[i])
		}
	}
	return out
}

// OpcodeHistogram counts decoded instructions and their bytes per
// mnemonic, most frequent first and ties by name.
func (m *Model) OpcodeHistogram() []OpcodeCount {
	counts := make(map[string]*OpcodeCount)
	for i := range m.Bodies {
		for j := range m.Bodies[i].Instructions {
			in := &m.Bodies[i].Instructions[j]
			add(counts, in.Name(), 1, int(in.Size))
		}
	}
	return sortCounts(counts)
}

// MergeHistograms sums histograms from several models.
func MergeHistograms(hs ...[]OpcodeCount) []OpcodeCount {
	counts := make(map[string]*OpcodeCount)
	for _, h := range hs {
		for _, c := range h {
			add(counts, c.Name, c.Count, c.Bytes)
		}
	}
	return sortCounts(counts)
}

func add(counts map[string]*OpcodeCount, name string, n, size int) {
	c, ok := counts[name]
	if !ok {
		c = &OpcodeCount{Name: name}
		counts[name] = c
	}
	c.Count += n
	c.Bytes += size
}

func sortCounts(counts map[string]*OpcodeCount) []OpcodeCount {
	out := make([]OpcodeCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
