package abc_test

import (
	"math"
	"testing"

	"github.com/wippyai/abcdump/abc"
	"github.com/wippyai/abcdump/errors"
	"github.com/wippyai/abcdump/internal/abctest"
	"github.com/wippyai/abcdump/internal/binary"
)

func TestDecodePool(t *testing.T) {
	w := &abctest.Writer{}
	w.U30(3) // ints
	w.S32(-1)
	w.S32(7)
	w.U30(2) // uints
	w.U30(300)
	w.U30(2) // doubles
	w.D64(1.5)
	w.U30(3) // strings
	w.String("flash.display")
	w.String("Sprite")
	w.U30(2) // namespaces
	w.Byte(0x16)
	w.U30(1)
	w.U30(2) // ns sets
	w.U30(1)
	w.U30(1)
	w.U30(3) // multinames
	w.Byte(0x07)
	w.U30(1)
	w.U30(2)
	w.Byte(0x09)
	w.U30(2)
	w.U30(1)

	r := binary.NewReader(w.Bytes())
	p, err := abc.DecodePool(r)
	if err != nil {
		t.Fatalf("DecodePool: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("%d bytes left unread", r.Len())
	}

	if len(p.Ints) != 3 || p.Ints[0] != 0 || p.Ints[1] != -1 || p.Ints[2] != 7 {
		t.Errorf("Ints = %v", p.Ints)
	}
	if len(p.Uints) != 2 || p.Uints[1] != 300 {
		t.Errorf("Uints = %v", p.Uints)
	}
	if !math.IsNaN(p.Doubles[0]) || p.Doubles[1] != 1.5 {
		t.Errorf("Doubles = %v", p.Doubles)
	}
	if p.Strings[0] != "" || p.Strings[2] != "Sprite" {
		t.Errorf("Strings = %q", p.Strings)
	}
	if p.Namespaces[0] != (abc.Namespace{}) || p.Namespaces[1].Kind != abc.NsPackage {
		t.Errorf("Namespaces = %v", p.Namespaces)
	}
	if len(p.NamespaceSets) != 2 || len(p.NamespaceSets[1]) != 1 {
		t.Errorf("NamespaceSets = %v", p.NamespaceSets)
	}
	if got := p.ResolveName(1); got != "flash.display.Sprite" {
		t.Errorf("ResolveName(1) = %q", got)
	}
	if got := p.ResolveName(2); got != "flash.display.Sprite" {
		t.Errorf("ResolveName(2) = %q", got)
	}
}

func TestDecodePoolEmptySections(t *testing.T) {
	r := binary.NewReader([]byte{0, 0, 0, 0, 0, 0, 0})
	p, err := abc.DecodePool(r)
	if err != nil {
		t.Fatalf("DecodePool: %v", err)
	}
	if len(p.Ints) != 1 || len(p.Uints) != 1 || len(p.Doubles) != 1 || len(p.Strings) != 1 ||
		len(p.Namespaces) != 1 || len(p.NamespaceSets) != 1 || len(p.Multinames) != 1 {
		t.Errorf("expected sentinel-only tables, got %+v", p)
	}
	if _, ok := p.Multiname(0); ok {
		t.Error("Multiname(0) should not be a real entry")
	}
	if got := p.ResolveName(0); got != abc.AnyName {
		t.Errorf("ResolveName(0) = %q", got)
	}
}

func TestDecodePoolErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind errors.Kind
	}{
		{"count past end", []byte{0xE8, 0x07}, errors.KindTruncated},
		{"short double", []byte{0, 0, 2, 1, 2, 3}, errors.KindTruncated},
		{"string past end", []byte{0, 0, 0, 2, 5, 'a'}, errors.KindTruncated},
		{"varint overflow", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, errors.KindOverflow},
		{"bad namespace kind", []byte{0, 0, 0, 0, 2, 0x01, 0}, errors.KindInvalidData},
		{"namespace string index", []byte{0, 0, 0, 0, 2, 0x16, 4}, errors.KindDanglingReference},
		{"ns set entry", []byte{0, 0, 0, 0, 0, 2, 1, 1}, errors.KindDanglingReference},
		{"unknown multiname kind", []byte{0, 0, 0, 0, 0, 0, 2, 0x42}, errors.KindMalformedMultiname},
		{"qname forward string", []byte{0, 0, 0, 0, 0, 0, 2, 0x07, 0, 3}, errors.KindDanglingReference},
		{"typename two params", []byte{0, 0, 0, 0, 0, 0, 2, 0x1D, 0, 2, 0, 0}, errors.KindMalformedMultiname},
		{"typename zero params", []byte{0, 0, 0, 0, 0, 0, 2, 0x1D, 0, 0}, errors.KindMalformedMultiname},
		{"typename cycle", []byte{0, 0, 0, 0, 0, 0, 2, 0x1D, 1, 1, 0}, errors.KindMalformedMultiname},
		{"typename dangling", []byte{0, 0, 0, 0, 0, 0, 2, 0x1D, 9, 1, 0}, errors.KindDanglingReference},
		{"truncated multiname", []byte{0, 0, 0, 0, 0, 0, 2, 0x07}, errors.KindTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := abc.DecodePool(binary.NewReader(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.KindOf(err); got != tt.kind {
				t.Errorf("kind = %q, want %q (%v)", got, tt.kind, err)
			}
		})
	}
}

func TestDecodePoolTypeNameForwardReference(t *testing.T) {
	// Entry 1 is Vector.<entry 3>, declared before entry 3 exists.
	w := &abctest.Writer{}
	w.U30(0)
	w.U30(0)
	w.U30(0)
	w.U30(4)
	w.String("__AS3__.vec")
	w.String("Vector")
	w.String("int")
	w.U30(2)
	w.Byte(0x16)
	w.U30(1)
	w.U30(0)
	w.U30(4)
	w.Byte(0x1D)
	w.U30(2)
	w.U30(1)
	w.U30(3)
	w.Byte(0x07)
	w.U30(1)
	w.U30(2)
	w.Byte(0x07)
	w.U30(1)
	w.U30(3)

	p, err := abc.DecodePool(binary.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("DecodePool: %v", err)
	}
	if got := p.ResolveName(1); got != "Vector.<__AS3__.vec.int>" {
		t.Errorf("ResolveName(1) = %q", got)
	}
}
