package abc_test

import (
	"testing"

	"github.com/wippyai/abcdump/abc"
	"github.com/wippyai/abcdump/internal/abctest"
)

func TestAssembleLabels(t *testing.T) {
	b := abctest.New()
	void := b.PublicName("", "void")
	widget := b.PublicName("ui", "Widget")
	helperName := b.PublicName("ui", "helper")

	iinit := b.Method(abctest.MethodSpec{})                      // 0
	cinit := b.Method(abctest.MethodSpec{})                      // 1
	draw := b.Method(abctest.MethodSpec{Return: void})           // 2
	width := b.Method(abctest.MethodSpec{})                      // 3
	setWidth := b.Method(abctest.MethodSpec{})                   // 4
	create := b.Method(abctest.MethodSpec{})                     // 5
	sinit := b.Method(abctest.MethodSpec{})                      // 6
	helper := b.Method(abctest.MethodSpec{})                     // 7
	closure := b.Method(abctest.MethodSpec{Name: "onClick"})     // 8
	anonymous := b.Method(abctest.MethodSpec{})                  // 9

	cls := b.Class(abctest.ClassSpec{
		Name:       widget,
		Init:       iinit,
		StaticInit: cinit,
		InstanceTraits: []abctest.TraitSpec{
			abctest.MethodTrait(b.PublicName("", "draw"), draw),
			abctest.Getter(b.PublicName("", "width"), width),
			abctest.Setter(b.PublicName("", "width"), setWidth),
		},
		StaticTraits: []abctest.TraitSpec{
			abctest.MethodTrait(b.PublicName("", "create"), create),
		},
	})
	b.Script(sinit,
		abctest.ClassTrait(widget, cls),
		abctest.TraitSpec{Name: helperName, Kind: abctest.TraitFunction, Method: helper},
		// A second owner does not rename the method.
		abctest.MethodTrait(b.PublicName("", "alias"), draw),
	)

	m, err := abc.Parse(b.Bytes(), abc.Strict)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := map[uint32]string{
		iinit:     "ui.Widget",
		cinit:     "ui.Widget$cinit",
		draw:      "ui.Widget/draw",
		width:     "ui.Widget/get width",
		setWidth:  "ui.Widget/set width",
		create:    "ui.Widget$/create",
		sinit:     "script0$init",
		helper:    "ui.helper",
		closure:   "method8[onClick]",
		anonymous: "method9",
	}
	for i, label := range want {
		if got := m.MethodLabel(i); got != label {
			t.Errorf("MethodLabel(%d) = %q, want %q", i, got, label)
		}
	}
	if got := m.MethodLabel(100); got != "method100" {
		t.Errorf("MethodLabel(100) = %q", got)
	}

	if got := m.ClassName(0); got != "ui.Widget" {
		t.Errorf("ClassName(0) = %q", got)
	}
	if got := m.ClassName(3); got != "class3" {
		t.Errorf("ClassName(3) = %q", got)
	}
}

func TestAssembleClasses(t *testing.T) {
	f, err := abc.Decode(sampleBuilder().Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m := abc.Assemble(f)

	if len(m.Classes) != 1 {
		t.Fatalf("classes = %d", len(m.Classes))
	}
	c := m.Classes[0]
	if c.Index != 0 || c.Init != 0 || c.StaticInit != 1 {
		t.Errorf("class = %+v", c)
	}
	if len(c.InstanceTraits) != 2 || len(c.StaticTraits) != 1 {
		t.Errorf("traits: %d instance, %d static", len(c.InstanceTraits), len(c.StaticTraits))
	}
	if !c.IsSealed() || c.IsInterface() || c.IsFinal() {
		t.Errorf("flags = %v", c.Flags)
	}
	if c.Super != 0 {
		t.Errorf("super = %d, want sentinel", c.Super)
	}

	if _, ok := m.BodyFor(2); !ok {
		t.Error("BodyFor(2) missing")
	}
	if _, ok := m.BodyFor(0); ok {
		t.Error("BodyFor(0) should have no body")
	}
	if _, ok := m.Method(4); ok {
		t.Error("Method(4) is out of range")
	}
}

func TestOpcodeHistogram(t *testing.T) {
	b := abctest.New()
	m1 := b.Method(abctest.MethodSpec{})
	m2 := b.Method(abctest.MethodSpec{})
	b.Body(abctest.BodySpec{Method: m1, Code: abctest.Code(0xD0, 0x30, 0x02, 0x02, 0x47)})
	b.Body(abctest.BodySpec{Method: m2, MaxStack: 1, Code: abctest.Code(0xD0, 0x24, 0x05, 0x02, 0x47)})

	m, err := abc.Parse(b.Bytes(), abc.Strict)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []abc.OpcodeCount{
		{Name: "nop", Count: 3, Bytes: 3},
		{Name: "getlocal0", Count: 2, Bytes: 2},
		{Name: "returnvoid", Count: 2, Bytes: 2},
		{Name: "pushbyte", Count: 1, Bytes: 2},
		{Name: "pushscope", Count: 1, Bytes: 1},
	}
	got := m.OpcodeHistogram()
	if len(got) != len(want) {
		t.Fatalf("histogram = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	total := abc.TotalBytes(got)
	if total != 10 {
		t.Errorf("TotalBytes = %d, want 10", total)
	}
	if share := got[3].Share(total); share != 20 {
		t.Errorf("pushbyte share = %v, want 20", share)
	}

	merged := abc.MergeHistograms(got, []abc.OpcodeCount{{Name: "pushscope", Count: 4, Bytes: 4}})
	if merged[0] != (abc.OpcodeCount{Name: "pushscope", Count: 5, Bytes: 5}) {
		t.Errorf("merged[0] = %v", merged[0])
	}
}
