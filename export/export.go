// Package export serializes a decode result to a canonical CBOR
// snapshot for downstream indexers. Equal inputs produce equal bytes.
package export

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/abcdump/abc"
	"github.com/wippyai/abcdump/decoder"
	"github.com/wippyai/abcdump/errors"
)

// FormatVersion is bumped whenever the snapshot layout changes.
const FormatVersion = 1

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("export: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Snapshot is the exported view of one decoded file.
type Snapshot struct {
	Blobs   []Blob   `cbor:"blobs"`
	Symbols []Symbol `cbor:"symbols,omitempty"`
	Format  int      `cbor:"format"`
}

// Blob describes one ABC blob.
type Blob struct {
	Version string   `cbor:"version"`
	Classes []Class  `cbor:"classes"`
	Methods []Method `cbor:"methods"`
	Scripts []Script `cbor:"scripts"`
}

// Class is a class or interface with its members.
type Class struct {
	Name       string   `cbor:"name"`
	Super      string   `cbor:"super,omitempty"`
	Interfaces []string `cbor:"interfaces,omitempty"`
	Traits     []Trait  `cbor:"traits"`
	Interface  bool     `cbor:"interface,omitempty"`
	Final      bool     `cbor:"final,omitempty"`
	Sealed     bool     `cbor:"sealed,omitempty"`
}

// Trait is a member of a class or script.
type Trait struct {
	Name       string `cbor:"name"`
	Kind       string `cbor:"kind"`
	Visibility string `cbor:"visibility"`
	Type       string `cbor:"type,omitempty"`   // slots and consts
	Method     string `cbor:"method,omitempty"` // label of the implementing method
	Static     bool   `cbor:"static,omitempty"`
}

// Method is one entry of the method table.
type Method struct {
	Label        string   `cbor:"label"`
	Error        string   `cbor:"error,omitempty"`
	Warnings     []string `cbor:"warnings,omitempty"`
	Index        uint32   `cbor:"index"`
	CodeLength   int      `cbor:"code_length,omitempty"`
	Instructions int      `cbor:"instructions,omitempty"`
	HasBody      bool     `cbor:"has_body,omitempty"`
}

// Script lists the package-level traits of a script.
type Script struct {
	Init   string  `cbor:"init"`
	Traits []Trait `cbor:"traits"`
}

// Symbol is a SymbolClass entry.
type Symbol struct {
	Name string `cbor:"name"`
	ID   uint16 `cbor:"id"`
}

// Build converts a decode result into a snapshot.
func Build(res *decoder.Result) *Snapshot {
	s := &Snapshot{Format: FormatVersion, Blobs: make([]Blob, len(res.Models))}
	for i, m := range res.Models {
		s.Blobs[i] = blob(m)
	}
	for _, sym := range res.Symbols {
		s.Symbols = append(s.Symbols, Symbol{Name: sym.Name, ID: sym.ID})
	}
	return s
}

func blob(m *abc.Model) Blob {
	b := Blob{
		Version: strconv.Itoa(int(m.Major)) + "." + strconv.Itoa(int(m.Minor)),
		Classes: make([]Class, len(m.Classes)),
		Methods: make([]Method, len(m.Methods)),
		Scripts: make([]Script, len(m.Scripts)),
	}

	for i := range m.Classes {
		c := &m.Classes[i]
		out := Class{
			Name:      m.ClassName(uint32(i)),
			Interface: c.IsInterface(),
			Final:     c.IsFinal(),
			Sealed:    c.IsSealed(),
		}
		if c.Super != 0 {
			out.Super = m.Pool.ResolveName(c.Super)
		}
		for _, iface := range c.Interfaces {
			out.Interfaces = append(out.Interfaces, m.Pool.ResolveName(iface))
		}
		out.Traits = traits(m, c.InstanceTraits, false)
		out.Traits = append(out.Traits, traits(m, c.StaticTraits, true)...)
		b.Classes[i] = out
	}

	for i := range m.Methods {
		idx := uint32(i)
		out := Method{Index: idx, Label: m.MethodLabel(idx)}
		if body, ok := m.BodyFor(idx); ok {
			out.HasBody = true
			out.CodeLength = len(body.Code)
			out.Instructions = len(body.Instructions)
			if body.Err != nil {
				out.Error = body.Err.Error()
			}
			for _, w := range body.Warnings {
				out.Warnings = append(out.Warnings, w.Error())
			}
		}
		b.Methods[i] = out
	}

	for i := range m.Scripts {
		sc := &m.Scripts[i]
		b.Scripts[i] = Script{Init: m.MethodLabel(sc.Init), Traits: traits(m, sc.Traits, false)}
	}
	return b
}

func traits(m *abc.Model, ts []abc.Trait, static bool) []Trait {
	out := make([]Trait, 0, len(ts))
	for i := range ts {
		t := &ts[i]
		e := Trait{
			Name:       m.Pool.LocalName(t.Name),
			Kind:       t.Kind.String(),
			Visibility: m.Pool.Visibility(t.Name).String(),
			Static:     static,
		}
		switch t.Kind {
		case abc.TraitSlot, abc.TraitConst:
			if t.Type != 0 {
				e.Type = m.Pool.ResolveName(t.Type)
			}
		case abc.TraitMethod, abc.TraitGetter, abc.TraitSetter, abc.TraitFunction:
			e.Method = m.MethodLabel(t.Method)
		case abc.TraitClass:
			e.Type = m.ClassName(t.Class)
		}
		out = append(out, e)
	}
	return out
}

// Marshal encodes s in canonical CBOR.
func Marshal(s *Snapshot) ([]byte, error) {
	return encMode.Marshal(s)
}

// Unmarshal decodes a snapshot.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "unmarshal snapshot")
	}
	return &s, nil
}

// WriteFile builds the snapshot of res and writes it to path.
func WriteFile(path string, res *decoder.Result) error {
	data, err := Marshal(Build(res))
	if err != nil {
		return errors.Wrap(errors.PhaseRender, errors.KindInvalidData, err, "marshal snapshot")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Load("write "+path, err)
	}
	return nil
}
