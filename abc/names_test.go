package abc_test

import (
	"testing"

	"github.com/wippyai/abcdump/abc"
	"github.com/wippyai/abcdump/internal/abctest"
)

type nameFixture struct {
	pool  *abc.Pool
	names map[string]uint32
}

func buildNames(t *testing.T) nameFixture {
	t.Helper()
	b := abctest.New()
	names := make(map[string]uint32)

	vecNs := b.Namespace(abctest.NsPackage, "__AS3__.vec")
	vector := b.QName(vecNs, "Vector")
	str := b.PublicName("", "String")
	intT := b.PublicName("", "int")
	names["sprite"] = b.PublicName("flash.display", "Sprite")
	names["string"] = str
	names["vecString"] = b.TypeName(vector, str)
	inner := b.TypeName(vector, intT)
	names["vecVecInt"] = b.TypeName(vector, inner)
	names["private"] = b.PrivateName("secret")
	names["internal"] = b.QName(b.Namespace(abctest.NsPackageInternal, "mx.core"), "Helper")
	names["protected"] = b.QName(b.Namespace(abctest.NsProtected, "mx.core:UIComponent"), "commit")
	names["custom"] = b.QName(b.Namespace(abctest.NsNamespace, "http://www.adobe.com/2006/flex/mx/internal"), "version")
	names["staticProtected"] = b.QName(b.Namespace(0x1A, "Foo"), "shared")
	names["anyNs"] = b.QName(0, "loose")

	names["rtq"] = b.RawMultiname(append([]byte{abctest.MnRTQName}, abctest.U30(b.String("x"))...))
	names["rtqL"] = b.RawMultiname([]byte{abctest.MnRTQNameL})
	names["nameL"] = b.RawMultiname([]byte{0x13})
	names["attr"] = b.RawMultiname(append(append([]byte{0x0D}, abctest.U30(b.Namespace(abctest.NsPackage, ""))...), abctest.U30(b.String("id"))...))

	pub := b.Namespace(abctest.NsPackage, "flash.events")
	priv := b.Namespace(abctest.NsPrivate, "")
	single := b.NsSet(pub)
	multi := b.NsSet(pub, priv)
	names["mnSingle"] = b.RawMultiname(append(append([]byte{abctest.MnMultiname}, abctest.U30(b.String("Event"))...), abctest.U30(single)...))
	names["mnMulti"] = b.RawMultiname(append(append([]byte{abctest.MnMultiname}, abctest.U30(b.String("Event"))...), abctest.U30(multi)...))
	names["mnL"] = b.RawMultiname(append([]byte{0x1B}, abctest.U30(multi)...))

	b.Script(0)
	f, err := abc.Decode(b.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return nameFixture{pool: f.Pool, names: names}
}

func TestResolveName(t *testing.T) {
	fx := buildNames(t)

	tests := []struct {
		key  string
		want string
	}{
		{"sprite", "flash.display.Sprite"},
		{"string", "String"},
		{"vecString", "Vector.<String>"},
		{"vecVecInt", "Vector.<Vector.<int>>"},
		{"private", "secret"},
		{"internal", "mx.core.Helper"},
		{"protected", "commit"},
		{"custom", "version"},
		{"anyNs", "*::loose"},
		{"rtq", "*::x"},
		{"rtqL", "*::*"},
		{"nameL", "*::*"},
		{"attr", "@id"},
		{"mnSingle", "flash.events.Event"},
		{"mnMulti", "*::Event"},
		{"mnL", "*::*"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			i := fx.names[tt.key]
			got := fx.pool.ResolveName(i)
			if got != tt.want {
				t.Errorf("ResolveName = %q, want %q", got, tt.want)
			}
			if again := fx.pool.ResolveName(i); again != got {
				t.Errorf("second resolution %q differs from %q", again, got)
			}
		})
	}
}

func TestResolveNameSentinels(t *testing.T) {
	fx := buildNames(t)

	if got := fx.pool.ResolveName(0); got != "*" {
		t.Errorf("ResolveName(0) = %q", got)
	}
	if got := fx.pool.ResolveName(9999); got != "<invalid multiname 9999>" {
		t.Errorf("ResolveName(9999) = %q", got)
	}
	if got := fx.pool.String(0); got != "" {
		t.Errorf("String(0) = %q", got)
	}
}

func TestVisibility(t *testing.T) {
	fx := buildNames(t)

	tests := []struct {
		key  string
		want abc.Visibility
	}{
		{"sprite", abc.VisibilityPublic},
		{"internal", abc.VisibilityInternal},
		{"protected", abc.VisibilityProtected},
		{"staticProtected", abc.VisibilityProtected},
		{"private", abc.VisibilityPrivate},
		{"custom", abc.VisibilityNamespace},
		{"mnSingle", abc.VisibilityPublic},
		{"mnMulti", abc.VisibilityUnknown},
		{"rtq", abc.VisibilityUnknown},
		{"anyNs", abc.VisibilityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := fx.pool.Visibility(fx.names[tt.key]); got != tt.want {
				t.Errorf("Visibility = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNamePackage(t *testing.T) {
	fx := buildNames(t)

	tests := []struct {
		key   string
		pkg   string
		local string
	}{
		{"sprite", "flash.display", "Sprite"},
		{"string", "", "String"},
		{"internal", "mx.core", "Helper"},
		{"private", "", "secret"},
		{"mnSingle", "flash.events", "Event"},
		{"vecString", "", "Vector.<String>"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			pkg, local := fx.pool.NamePackage(fx.names[tt.key])
			if pkg != tt.pkg || local != tt.local {
				t.Errorf("NamePackage = (%q, %q), want (%q, %q)", pkg, local, tt.pkg, tt.local)
			}
		})
	}

	if got := fx.pool.NamespaceURI(fx.names["custom"]); got != "http://www.adobe.com/2006/flex/mx/internal" {
		t.Errorf("NamespaceURI = %q", got)
	}
}
