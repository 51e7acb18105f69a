package abctest

// Namespace kinds, multiname kinds and flags used by fixtures.
const (
	NsPrivate         byte = 0x05
	NsNamespace       byte = 0x08
	NsPackage         byte = 0x16
	NsPackageInternal byte = 0x17
	NsProtected       byte = 0x18

	MnQName     byte = 0x07
	MnRTQName   byte = 0x0F
	MnRTQNameL  byte = 0x11
	MnMultiname byte = 0x09
	MnTypeName  byte = 0x1D

	TraitSlot     byte = 0
	TraitMethod   byte = 1
	TraitGetter   byte = 2
	TraitSetter   byte = 3
	TraitClass    byte = 4
	TraitFunction byte = 5
	TraitConst    byte = 6

	AttrFinal    byte = 0x1
	AttrOverride byte = 0x2
	AttrMetadata byte = 0x4

	ClassSealed    byte = 0x01
	ClassFinal     byte = 0x02
	ClassInterface byte = 0x04
)

// Optional is a default value: pool index and constant kind.
type Optional struct {
	Index uint32
	Kind  byte
}

// MethodSpec describes a method_info record.
type MethodSpec struct {
	Params     []uint32 // multiname indices
	Optional   []Optional
	ParamNames []string
	Return     uint32
	Name       string
	Flags      byte
}

// TraitSpec describes a trait record. Unused fields are ignored for the
// given Kind.
type TraitSpec struct {
	Metadata []uint32
	Name     uint32
	SlotID   uint32
	DispID   uint32
	Type     uint32
	Value    Optional
	Class    uint32
	Method   uint32
	Kind     byte
	Attr     byte
}

// ClassSpec describes a paired instance_info and class_info.
type ClassSpec struct {
	Interfaces     []uint32
	InstanceTraits []TraitSpec
	StaticTraits   []TraitSpec
	Name           uint32
	Super          uint32
	ProtectedNs    uint32
	Init           uint32
	StaticInit     uint32
	Flags          byte
}

// ExceptionSpec describes an exception handler entry.
type ExceptionSpec struct {
	From, To, Target uint32
	Type, VarName    uint32
}

// BodySpec describes a method_body_info record.
type BodySpec struct {
	Code           []byte
	Exceptions     []ExceptionSpec
	Traits         []TraitSpec
	Method         uint32
	MaxStack       uint32
	Locals         uint32
	InitScopeDepth uint32
	MaxScopeDepth  uint32
}

type namespace struct {
	kind byte
	name uint32
}

// Builder accumulates ABC records and serializes them in file order.
// Pool entries are interned; returned indices are ready to reference.
type Builder struct {
	Minor, Major uint16

	ints       []int32
	uints      []uint32
	doubles    []float64
	strings    []string
	stringIdx  map[string]uint32
	namespaces []namespace
	nsSets     [][]uint32
	multinames [][]byte
	methods    []MethodSpec
	metadata   [][2][]string
	classes    []ClassSpec
	scripts    []struct {
		init   uint32
		traits []TraitSpec
	}
	bodies []BodySpec
}

// New returns a Builder for ABC version 46.16.
func New() *Builder {
	return &Builder{Minor: 16, Major: 46, stringIdx: make(map[string]uint32)}
}

// Int adds an int constant and returns its index.
func (b *Builder) Int(v int32) uint32 {
	b.ints = append(b.ints, v)
	return uint32(len(b.ints))
}

// UInt adds a uint constant and returns its index.
func (b *Builder) UInt(v uint32) uint32 {
	b.uints = append(b.uints, v)
	return uint32(len(b.uints))
}

// Double adds a double constant and returns its index.
func (b *Builder) Double(v float64) uint32 {
	b.doubles = append(b.doubles, v)
	return uint32(len(b.doubles))
}

// String interns s and returns its index.
func (b *Builder) String(s string) uint32 {
	if i, ok := b.stringIdx[s]; ok {
		return i
	}
	b.strings = append(b.strings, s)
	i := uint32(len(b.strings))
	b.stringIdx[s] = i
	return i
}

// Namespace adds a namespace record and returns its index.
func (b *Builder) Namespace(kind byte, name string) uint32 {
	b.namespaces = append(b.namespaces, namespace{kind: kind, name: b.String(name)})
	return uint32(len(b.namespaces))
}

// NsSet adds a namespace set and returns its index.
func (b *Builder) NsSet(ns ...uint32) uint32 {
	b.nsSets = append(b.nsSets, ns)
	return uint32(len(b.nsSets))
}

// RawMultiname adds a multiname record from its encoded bytes.
func (b *Builder) RawMultiname(encoded []byte) uint32 {
	b.multinames = append(b.multinames, encoded)
	return uint32(len(b.multinames))
}

// QName adds a QName over namespace ns.
func (b *Builder) QName(ns uint32, name string) uint32 {
	enc := []byte{MnQName}
	enc = append(enc, U30(ns)...)
	enc = append(enc, U30(b.String(name))...)
	return b.RawMultiname(enc)
}

// PublicName adds a QName in the public namespace of pkg.
func (b *Builder) PublicName(pkg, name string) uint32 {
	return b.QName(b.Namespace(NsPackage, pkg), name)
}

// PrivateName adds a QName in a private namespace.
func (b *Builder) PrivateName(name string) uint32 {
	return b.QName(b.Namespace(NsPrivate, ""), name)
}

// TypeName adds a TypeName with the given base and parameters.
func (b *Builder) TypeName(base uint32, params ...uint32) uint32 {
	enc := []byte{MnTypeName}
	enc = append(enc, U30(base)...)
	enc = append(enc, U30(uint32(len(params)))...)
	for _, p := range params {
		enc = append(enc, U30(p)...)
	}
	return b.RawMultiname(enc)
}

// Method adds a method_info and returns its index.
func (b *Builder) Method(m MethodSpec) uint32 {
	b.methods = append(b.methods, m)
	return uint32(len(b.methods) - 1)
}

// Metadata adds a metadata entry from alternating key, value strings and
// returns its index. An empty key marks a keyless value.
func (b *Builder) Metadata(name string, kv ...string) uint32 {
	var keys, values []string
	for i := 0; i+1 < len(kv); i += 2 {
		keys = append(keys, kv[i])
		values = append(values, kv[i+1])
	}
	b.String(name)
	b.metadata = append(b.metadata, [2][]string{append([]string{name}, keys...), values})
	return uint32(len(b.metadata) - 1)
}

// Class adds a class and returns its index.
func (b *Builder) Class(c ClassSpec) uint32 {
	b.classes = append(b.classes, c)
	return uint32(len(b.classes) - 1)
}

// Script adds a script.
func (b *Builder) Script(init uint32, traits ...TraitSpec) {
	b.scripts = append(b.scripts, struct {
		init   uint32
		traits []TraitSpec
	}{init, traits})
}

// Body adds a method body.
func (b *Builder) Body(body BodySpec) {
	b.bodies = append(b.bodies, body)
}

// Bytes serializes the blob.
func (b *Builder) Bytes() []byte {
	// Intern every string referenced by name before the pool is written.
	for _, m := range b.methods {
		if m.Name != "" {
			b.String(m.Name)
		}
		for _, n := range m.ParamNames {
			b.String(n)
		}
	}
	for _, md := range b.metadata {
		for _, k := range md[0][1:] {
			if k != "" {
				b.String(k)
			}
		}
		for _, v := range md[1] {
			b.String(v)
		}
	}

	w := &Writer{}
	w.U16(b.Minor)
	w.U16(b.Major)

	w.U30(count(len(b.ints)))
	for _, v := range b.ints {
		w.S32(v)
	}
	w.U30(count(len(b.uints)))
	for _, v := range b.uints {
		w.U30(v)
	}
	w.U30(count(len(b.doubles)))
	for _, v := range b.doubles {
		w.D64(v)
	}
	w.U30(count(len(b.strings)))
	for _, s := range b.strings {
		w.String(s)
	}
	w.U30(count(len(b.namespaces)))
	for _, ns := range b.namespaces {
		w.Byte(ns.kind)
		w.U30(ns.name)
	}
	w.U30(count(len(b.nsSets)))
	for _, set := range b.nsSets {
		w.U30(uint32(len(set)))
		for _, ns := range set {
			w.U30(ns)
		}
	}
	w.U30(count(len(b.multinames)))
	for _, mn := range b.multinames {
		w.Raw(mn)
	}

	w.U30(uint32(len(b.methods)))
	for _, m := range b.methods {
		w.U30(uint32(len(m.Params)))
		w.U30(m.Return)
		for _, p := range m.Params {
			w.U30(p)
		}
		w.U30(b.stringOrZero(m.Name))
		w.Byte(m.Flags)
		if m.Flags&0x08 != 0 {
			w.U30(uint32(len(m.Optional)))
			for _, o := range m.Optional {
				w.U30(o.Index)
				w.Byte(o.Kind)
			}
		}
		if m.Flags&0x80 != 0 {
			for _, n := range m.ParamNames {
				w.U30(b.String(n))
			}
		}
	}

	w.U30(uint32(len(b.metadata)))
	for _, md := range b.metadata {
		w.U30(b.String(md[0][0]))
		keys := md[0][1:]
		w.U30(uint32(len(keys)))
		for _, k := range keys {
			w.U30(b.stringOrZero(k))
		}
		for _, v := range md[1] {
			w.U30(b.String(v))
		}
	}

	w.U30(uint32(len(b.classes)))
	for _, c := range b.classes {
		w.U30(c.Name)
		w.U30(c.Super)
		flags := c.Flags
		if c.ProtectedNs != 0 {
			flags |= 0x08
		}
		w.Byte(flags)
		if c.ProtectedNs != 0 {
			w.U30(c.ProtectedNs)
		}
		w.U30(uint32(len(c.Interfaces)))
		for _, i := range c.Interfaces {
			w.U30(i)
		}
		w.U30(c.Init)
		writeTraits(w, c.InstanceTraits)
	}
	for _, c := range b.classes {
		w.U30(c.StaticInit)
		writeTraits(w, c.StaticTraits)
	}

	w.U30(uint32(len(b.scripts)))
	for _, s := range b.scripts {
		w.U30(s.init)
		writeTraits(w, s.traits)
	}

	w.U30(uint32(len(b.bodies)))
	for _, body := range b.bodies {
		w.U30(body.Method)
		w.U30(body.MaxStack)
		w.U30(body.Locals)
		w.U30(body.InitScopeDepth)
		w.U30(body.MaxScopeDepth)
		w.U30(uint32(len(body.Code)))
		w.Raw(body.Code)
		w.U30(uint32(len(body.Exceptions)))
		for _, ex := range body.Exceptions {
			w.U30(ex.From)
			w.U30(ex.To)
			w.U30(ex.Target)
			w.U30(ex.Type)
			w.U30(ex.VarName)
		}
		writeTraits(w, body.Traits)
	}

	return w.Bytes()
}

func (b *Builder) stringOrZero(s string) uint32 {
	if s == "" {
		return 0
	}
	return b.String(s)
}

func writeTraits(w *Writer, traits []TraitSpec) {
	w.U30(uint32(len(traits)))
	for _, t := range traits {
		w.U30(t.Name)
		attr := t.Attr
		if len(t.Metadata) > 0 {
			attr |= AttrMetadata
		}
		w.Byte(t.Kind | attr<<4)
		switch t.Kind {
		case TraitSlot, TraitConst:
			w.U30(t.SlotID)
			w.U30(t.Type)
			w.U30(t.Value.Index)
			if t.Value.Index != 0 {
				w.Byte(t.Value.Kind)
			}
		case TraitClass:
			w.U30(t.SlotID)
			w.U30(t.Class)
		case TraitFunction:
			w.U30(t.SlotID)
			w.U30(t.Method)
		default:
			w.U30(t.DispID)
			w.U30(t.Method)
		}
		if attr&AttrMetadata != 0 {
			w.U30(uint32(len(t.Metadata)))
			for _, m := range t.Metadata {
				w.U30(m)
			}
		}
	}
}

// count encodes a pool section length: entries plus the sentinel, or 0
// for an empty section.
func count(n int) uint32 {
	if n == 0 {
		return 0
	}
	return uint32(n + 1)
}

// Trait constructors

// MethodTrait returns a method trait.
func MethodTrait(name, method uint32) TraitSpec {
	return TraitSpec{Name: name, Kind: TraitMethod, Method: method}
}

// Getter returns a getter trait.
func Getter(name, method uint32) TraitSpec {
	return TraitSpec{Name: name, Kind: TraitGetter, Method: method}
}

// Setter returns a setter trait.
func Setter(name, method uint32) TraitSpec {
	return TraitSpec{Name: name, Kind: TraitSetter, Method: method}
}

// Slot returns a var trait with no default.
func Slot(name, typ uint32) TraitSpec {
	return TraitSpec{Name: name, Kind: TraitSlot, Type: typ}
}

// Const returns a const trait with a default value.
func Const(name, typ uint32, value Optional) TraitSpec {
	return TraitSpec{Name: name, Kind: TraitConst, Type: typ, Value: value}
}

// ClassTrait returns a class trait.
func ClassTrait(name, class uint32) TraitSpec {
	return TraitSpec{Name: name, Kind: TraitClass, Class: class}
}
