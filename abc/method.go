package abc

import (
	"github.com/wippyai/abcdump/errors"
)

// OptionalValue is the default of an optional parameter or slot.
// Index points into the pool selected by Kind; it is unused for the
// true, false, null and undefined kinds.
type OptionalValue struct {
	Index uint32
	Kind  ConstantKind
}

// MethodInfo is a method signature.
type MethodInfo struct {
	ParamTypes []uint32
	Optional   []OptionalValue // defaults for the trailing parameters
	ParamNames []uint32        // string indices, present with MethodHasParamNames
	ReturnType uint32
	Name       uint32 // debug name
	Flags      MethodFlags
}

// HasRest reports whether the method takes a ...rest parameter.
func (m *MethodInfo) HasRest() bool {
	return m.Flags&MethodNeedRest != 0
}

// MetadataItem is one key/value pair. A zero Key marks a keyless value.
type MetadataItem struct {
	Key   uint32
	Value uint32
}

// Metadata is a metadata entry such as [Event(name="change")].
type Metadata struct {
	Items []MetadataItem
	Name  uint32
}

func (d *decoder) decodeMethods() error {
	n, err := d.count("method", 4)
	if err != nil {
		return err
	}
	d.f.Methods = make([]MethodInfo, n)
	for i := range d.f.Methods {
		if err := d.decodeMethod(&d.f.Methods[i]); err != nil {
			return errors.WithPath(err, itoa(i))
		}
	}
	return nil
}

func (d *decoder) decodeMethod(m *MethodInfo) error {
	paramCount, err := d.u30("param count")
	if err != nil {
		return err
	}
	if int64(paramCount) > int64(d.r.Len()) {
		return errors.Truncated(errors.PhaseAssemble, "param types", d.r.Position())
	}
	if m.ReturnType, err = d.multiname(); err != nil {
		return err
	}
	m.ParamTypes = make([]uint32, paramCount)
	for j := range m.ParamTypes {
		if m.ParamTypes[j], err = d.multiname(); err != nil {
			return err
		}
	}
	if m.Name, err = d.str(); err != nil {
		return err
	}
	flags, err := d.u8("method flags")
	if err != nil {
		return err
	}
	m.Flags = MethodFlags(flags)

	if m.Flags&MethodHasOptional != 0 {
		pos := d.r.Position()
		optCount, err := d.u30("optional count")
		if err != nil {
			return err
		}
		if optCount > paramCount {
			return errors.New(errors.PhaseAssemble, errors.KindInvalidData).
				Offset(pos).
				Detail("%d optional values for %d parameters", optCount, paramCount).
				Build()
		}
		m.Optional = make([]OptionalValue, optCount)
		for j := range m.Optional {
			if m.Optional[j], err = d.optionalValue(); err != nil {
				return err
			}
		}
	}

	if m.Flags&MethodHasParamNames != 0 {
		m.ParamNames = make([]uint32, paramCount)
		for j := range m.ParamNames {
			if m.ParamNames[j], err = d.str(); err != nil {
				return err
			}
		}
	}
	return nil
}

// optionalValue reads a value index followed by its kind byte and checks
// the index against the pool the kind selects.
func (d *decoder) optionalValue() (OptionalValue, error) {
	pos := d.r.Position()
	idx, err := d.u30("value index")
	if err != nil {
		return OptionalValue{}, err
	}
	kind, err := d.u8("value kind")
	if err != nil {
		return OptionalValue{}, err
	}
	v := OptionalValue{Index: idx, Kind: ConstantKind(kind)}
	if err := d.checkValue(v, pos); err != nil {
		return OptionalValue{}, err
	}
	return v, nil
}

func (d *decoder) checkValue(v OptionalValue, pos int) error {
	p := d.f.Pool
	limit := -1
	table := ""
	switch v.Kind {
	case ConstInt:
		table, limit = "int", len(p.Ints)
	case ConstUInt:
		table, limit = "uint", len(p.Uints)
	case ConstDouble:
		table, limit = "double", len(p.Doubles)
	case ConstUtf8:
		table, limit = "string", len(p.Strings)
	case ConstTrue, ConstFalse, ConstNull, ConstUndefined:
	default:
		if !NamespaceKind(v.Kind).valid() {
			return errors.New(errors.PhaseAssemble, errors.KindInvalidData).
				Offset(pos).
				Detail("unknown constant kind 0x%02x", byte(v.Kind)).
				Value(byte(v.Kind)).
				Build()
		}
		table, limit = "namespace", len(p.Namespaces)
	}
	if limit >= 0 && int64(v.Index) >= int64(limit) {
		return errors.DanglingReference(errors.PhaseAssemble, table, v.Index, limit, pos)
	}
	return nil
}

func (d *decoder) decodeMetadata() error {
	n, err := d.count("metadata", 2)
	if err != nil {
		return err
	}
	d.f.Metadata = make([]Metadata, n)
	for i := range d.f.Metadata {
		md := &d.f.Metadata[i]
		if md.Name, err = d.str(); err != nil {
			return errors.WithPath(err, itoa(i))
		}
		items, err := d.count("metadata item", 2)
		if err != nil {
			return errors.WithPath(err, itoa(i))
		}
		md.Items = make([]MetadataItem, items)
		for j := range md.Items {
			if md.Items[j].Key, err = d.str(); err != nil {
				return errors.WithPath(err, itoa(i))
			}
		}
		for j := range md.Items {
			if md.Items[j].Value, err = d.str(); err != nil {
				return errors.WithPath(err, itoa(i))
			}
		}
	}
	return nil
}
