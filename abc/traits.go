package abc

import (
	"github.com/wippyai/abcdump/errors"
)

// Trait is a member declaration. Which fields are meaningful depends on Kind:
//
//	Slot, Const        SlotID, Type, Value
//	Method, Getter,    DispID, Method
//	Setter
//	Class              SlotID, Class
//	Function           SlotID, Method
type Trait struct {
	Metadata []uint32 // indices into File.Metadata
	Value    OptionalValue
	Name     uint32
	SlotID   uint32
	DispID   uint32
	Type     uint32
	Class    uint32
	Method   uint32
	Kind     TraitKind
	Attr     TraitAttr
}

// IsFinal reports whether the trait carries the final attribute.
func (t *Trait) IsFinal() bool { return t.Attr&AttrFinal != 0 }

// IsOverride reports whether the trait carries the override attribute.
func (t *Trait) IsOverride() bool { return t.Attr&AttrOverride != 0 }

// HasValue reports whether a slot or const trait declares a default.
func (t *Trait) HasValue() bool {
	return (t.Kind == TraitSlot || t.Kind == TraitConst) && t.Value.Index != 0
}

// decodeTraits reads a trait count followed by that many traits.
func (d *decoder) decodeTraits() ([]Trait, error) {
	n, err := d.count("trait", 3)
	if err != nil {
		return nil, err
	}
	traits := make([]Trait, n)
	for i := range traits {
		if err := d.decodeTrait(&traits[i]); err != nil {
			return nil, errors.WithPath(err, "trait", itoa(i))
		}
	}
	return traits, nil
}

func (d *decoder) decodeTrait(t *Trait) error {
	var err error
	if t.Name, err = d.multiname(); err != nil {
		return err
	}
	pos := d.r.Position()
	kind, err := d.u8("trait kind")
	if err != nil {
		return err
	}
	t.Kind = TraitKind(kind & 0x0f)
	t.Attr = TraitAttr(kind >> 4)

	switch t.Kind {
	case TraitSlot, TraitConst:
		if t.SlotID, err = d.u30("slot id"); err != nil {
			return err
		}
		if t.Type, err = d.multiname(); err != nil {
			return err
		}
		vpos := d.r.Position()
		if t.Value.Index, err = d.u30("value index"); err != nil {
			return err
		}
		if t.Value.Index != 0 {
			vkind, err := d.u8("value kind")
			if err != nil {
				return err
			}
			t.Value.Kind = ConstantKind(vkind)
			if err := d.checkValue(t.Value, vpos); err != nil {
				return err
			}
		}
	case TraitClass:
		if t.SlotID, err = d.u30("slot id"); err != nil {
			return err
		}
		if t.Class, err = d.index("class", d.classCount()); err != nil {
			return err
		}
	case TraitFunction:
		if t.SlotID, err = d.u30("slot id"); err != nil {
			return err
		}
		if t.Method, err = d.method(false); err != nil {
			return err
		}
	case TraitMethod, TraitGetter, TraitSetter:
		if t.DispID, err = d.u30("disp id"); err != nil {
			return err
		}
		if t.Method, err = d.method(false); err != nil {
			return err
		}
	default:
		return errors.New(errors.PhaseAssemble, errors.KindInvalidData).
			Offset(pos).
			Detail("unknown trait kind %d", kind&0x0f).
			Value(kind).
			Build()
	}

	if t.Attr&AttrMetadata != 0 {
		n, err := d.count("trait metadata", 1)
		if err != nil {
			return err
		}
		t.Metadata = make([]uint32, n)
		for j := range t.Metadata {
			if t.Metadata[j], err = d.index("metadata", len(d.f.Metadata)); err != nil {
				return err
			}
		}
	}
	return nil
}
