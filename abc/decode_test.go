package abc_test

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/abcdump/abc"
	"github.com/wippyai/abcdump/errors"
	"github.com/wippyai/abcdump/internal/abctest"
)

// sampleBuilder returns a blob exercising every table: pool sections,
// optional values and parameter names, metadata, a class with both trait
// sides, a script and a body with an exception handler.
func sampleBuilder() *abctest.Builder {
	b := abctest.New()
	str := b.PublicName("", "String")
	num := b.PublicName("", "Number")
	void := b.PublicName("", "void")
	errT := b.PublicName("", "Error")
	shape := b.PublicName("geom", "Shape")
	b.UInt(4000000000)

	ctor := b.Method(abctest.MethodSpec{
		Params:     []uint32{str, num},
		Optional:   []abctest.Optional{{Index: b.Double(2.5), Kind: 0x06}},
		ParamNames: []string{"id", "scale"},
		Flags:      0x08 | 0x80,
	})
	cinit := b.Method(abctest.MethodSpec{})
	area := b.Method(abctest.MethodSpec{Return: num, Name: "area"})
	sinit := b.Method(abctest.MethodSpec{})

	meta := b.Metadata("Bindable", "event", "change")
	areaTrait := abctest.Getter(b.PublicName("", "area"), area)
	areaTrait.Metadata = []uint32{meta}

	cls := b.Class(abctest.ClassSpec{
		Name:        shape,
		Flags:       abctest.ClassSealed,
		ProtectedNs: b.Namespace(abctest.NsProtected, "geom:Shape"),
		Init:        ctor,
		StaticInit:  cinit,
		InstanceTraits: []abctest.TraitSpec{
			abctest.Slot(b.PublicName("", "name"), str),
			areaTrait,
		},
		StaticTraits: []abctest.TraitSpec{
			abctest.Const(b.PublicName("", "UNIT"), num, abctest.Optional{Index: b.Int(1), Kind: 0x03}),
		},
	})
	b.Script(sinit, abctest.ClassTrait(shape, cls))

	b.Body(abctest.BodySpec{
		Method:   area,
		MaxStack: 2,
		Locals:   1,
		Code:     abctest.Code(0xD0, 0x30, 0x24, 3, 0x48),
		Exceptions: []abctest.ExceptionSpec{
			{From: 0, To: 4, Target: 4, Type: errT, VarName: void},
		},
	})
	return b
}

func TestDecodeSample(t *testing.T) {
	f, err := abc.Decode(sampleBuilder().Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if f.Major != 46 || f.Minor != 16 {
		t.Errorf("version = %d.%d", f.Major, f.Minor)
	}
	if len(f.Methods) != 4 {
		t.Fatalf("methods = %d", len(f.Methods))
	}

	ctor := f.Methods[0]
	if len(ctor.ParamTypes) != 2 || len(ctor.Optional) != 1 || len(ctor.ParamNames) != 2 {
		t.Errorf("ctor = %+v", ctor)
	}
	if ctor.Optional[0].Kind != abc.ConstDouble || f.Pool.Doubles[ctor.Optional[0].Index] != 2.5 {
		t.Errorf("optional = %+v", ctor.Optional[0])
	}
	if f.Pool.String(ctor.ParamNames[1]) != "scale" {
		t.Errorf("param name = %q", f.Pool.String(ctor.ParamNames[1]))
	}
	if f.Pool.String(f.Methods[2].Name) != "area" {
		t.Errorf("debug name = %q", f.Pool.String(f.Methods[2].Name))
	}

	if len(f.Metadata) != 1 || len(f.Metadata[0].Items) != 1 {
		t.Fatalf("metadata = %+v", f.Metadata)
	}
	if f.Pool.String(f.Metadata[0].Items[0].Value) != "change" {
		t.Errorf("metadata value = %q", f.Pool.String(f.Metadata[0].Items[0].Value))
	}

	if len(f.Instances) != 1 || len(f.Classes) != 1 {
		t.Fatalf("instances = %d, classes = %d", len(f.Instances), len(f.Classes))
	}
	in := f.Instances[0]
	if !in.IsSealed() || in.IsFinal() || in.IsInterface() || in.ProtectedNs == 0 {
		t.Errorf("instance flags = %v, protectedNs = %d", in.Flags, in.ProtectedNs)
	}
	if len(in.Traits) != 2 {
		t.Fatalf("instance traits = %d", len(in.Traits))
	}
	if in.Traits[1].Kind != abc.TraitGetter || len(in.Traits[1].Metadata) != 1 {
		t.Errorf("getter trait = %+v", in.Traits[1])
	}
	if in.Traits[0].HasValue() {
		t.Error("slot without default reports a value")
	}
	unit := f.Classes[0].Traits[0]
	if unit.Kind != abc.TraitConst || !unit.HasValue() || unit.Value.Kind != abc.ConstInt {
		t.Errorf("const trait = %+v", unit)
	}

	if len(f.Scripts) != 1 || f.Scripts[0].Traits[0].Kind != abc.TraitClass {
		t.Errorf("scripts = %+v", f.Scripts)
	}

	if len(f.Bodies) != 1 {
		t.Fatalf("bodies = %d", len(f.Bodies))
	}
	body := f.Bodies[0]
	if body.Method != 2 || body.MaxStack != 2 || len(body.Code) != 5 || len(body.Exceptions) != 1 {
		t.Errorf("body = %+v", body)
	}
	if body.Instructions != nil {
		t.Error("Decode should not decode instructions")
	}
}

func TestDecodeEmptyScript(t *testing.T) {
	b := abctest.New()
	b.Script(0)

	f, err := abc.Decode(b.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(f.Methods) != 0 || len(f.Instances) != 0 || len(f.Scripts) != 1 || len(f.Bodies) != 0 {
		t.Errorf("unexpected tables: %+v", f)
	}
}

func TestDecodeVersion(t *testing.T) {
	for _, major := range []uint16{46, 47} {
		b := abctest.New()
		b.Major = major
		if _, err := abc.Decode(b.Bytes()); err != nil {
			t.Errorf("major %d: %v", major, err)
		}
	}

	b := abctest.New()
	b.Major = 45
	_, err := abc.Decode(b.Bytes())
	if err == nil {
		t.Fatal("expected error for major 45")
	}
	var e *errors.Error
	if !asError(err, &e) || e.Kind != errors.KindInvalidData || e.Offset != 2 {
		t.Errorf("err = %v", err)
	}
}

func TestDecodeTruncatedPrefixes(t *testing.T) {
	data := sampleBuilder().Bytes()

	for n := 0; n < len(data); n++ {
		_, err := abc.Decode(data[:n])
		if err == nil {
			t.Fatalf("prefix %d/%d decoded without error", n, len(data))
		}
		if !errors.IsKind(err, errors.KindTruncated) {
			t.Fatalf("prefix %d/%d: kind %q (%v)", n, len(data), errors.KindOf(err), err)
		}
	}
}

func TestDecodeReferenceErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *abctest.Builder)
		kind  errors.Kind
	}{
		{
			name: "script init out of range",
			build: func(b *abctest.Builder) {
				b.Method(abctest.MethodSpec{})
				b.Script(5)
			},
			kind: errors.KindDanglingReference,
		},
		{
			name: "empty script with nonzero init",
			build: func(b *abctest.Builder) {
				b.Script(1)
			},
			kind: errors.KindDanglingReference,
		},
		{
			name: "return type out of range",
			build: func(b *abctest.Builder) {
				b.Method(abctest.MethodSpec{Return: 40})
			},
			kind: errors.KindDanglingReference,
		},
		{
			name: "class trait out of range",
			build: func(b *abctest.Builder) {
				m := b.Method(abctest.MethodSpec{})
				b.Script(m, abctest.ClassTrait(b.PublicName("", "A"), 3))
			},
			kind: errors.KindDanglingReference,
		},
		{
			name: "body method out of range",
			build: func(b *abctest.Builder) {
				b.Method(abctest.MethodSpec{})
				b.Body(abctest.BodySpec{Method: 7, Code: []byte{0x47}})
			},
			kind: errors.KindDanglingReference,
		},
		{
			name: "unknown trait kind",
			build: func(b *abctest.Builder) {
				m := b.Method(abctest.MethodSpec{})
				b.Script(m, abctest.TraitSpec{Name: b.PublicName("", "x"), Kind: 9})
			},
			kind: errors.KindInvalidData,
		},
		{
			name: "more optional values than parameters",
			build: func(b *abctest.Builder) {
				b.Method(abctest.MethodSpec{
					Optional: []abctest.Optional{{Kind: 0x0C}},
					Flags:    0x08,
				})
			},
			kind: errors.KindInvalidData,
		},
		{
			name: "unknown constant kind",
			build: func(b *abctest.Builder) {
				b.Method(abctest.MethodSpec{
					Params:   []uint32{0},
					Optional: []abctest.Optional{{Index: 1, Kind: 0x02}},
					Flags:    0x08,
				})
			},
			kind: errors.KindInvalidData,
		},
		{
			name: "optional int out of range",
			build: func(b *abctest.Builder) {
				b.Method(abctest.MethodSpec{
					Params:   []uint32{0},
					Optional: []abctest.Optional{{Index: 3, Kind: 0x03}},
					Flags:    0x08,
				})
			},
			kind: errors.KindDanglingReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := abctest.New()
			tt.build(b)
			_, err := abc.Decode(b.Bytes())
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.KindOf(err); got != tt.kind {
				t.Errorf("kind = %q, want %q (%v)", got, tt.kind, err)
			}
		})
	}
}

func TestDecodeErrorPath(t *testing.T) {
	b := abctest.New()
	b.Method(abctest.MethodSpec{})
	b.Body(abctest.BodySpec{Method: 7, Code: []byte{0x47}})

	_, err := abc.Decode(b.Bytes())
	var e *errors.Error
	if !asError(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if len(e.Path) < 2 || e.Path[0] != "method_body" || e.Path[1] != "0" {
		t.Errorf("path = %v", e.Path)
	}
	if e.Phase != errors.PhaseAssemble {
		t.Errorf("phase = %v", e.Phase)
	}
}

func asError(err error, target **errors.Error) bool {
	return stderrors.As(err, target)
}
