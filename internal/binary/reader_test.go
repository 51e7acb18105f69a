package binary

import (
	"bytes"
	stderrors "errors"
	"math"
	"testing"

	"github.com/wippyai/abcdump/errors"
)

func TestReaderReadByte(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReader(data)

	for i, want := range data {
		if r.Position() != i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadByte %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	if r.Len() != 0 {
		t.Errorf("Len: got %d, want 0", r.Len())
	}

	_, err := r.ReadByte()
	if !stderrors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReaderReadBytesCopies(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	r := NewReader(data)

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}

	data[0] = 0xff
	if got[0] != 0x01 {
		t.Error("ReadBytes result aliases the input buffer")
	}

	if _, err := r.ReadBytes(10); !stderrors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
	if r.Position() != 3 {
		t.Errorf("failed read moved position to %d", r.Position())
	}
}

func TestReaderReadU32(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x01}, 255},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		r := NewReader(tt.encoded)
		got, err := r.ReadU32()
		if err != nil {
			t.Errorf("ReadU32(%v): %v", tt.encoded, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadU32(%v): got %d, want %d", tt.encoded, got, tt.want)
		}
		if r.Len() != 0 {
			t.Errorf("ReadU32(%v): %d bytes left", tt.encoded, r.Len())
		}
	}
}

func TestReaderReadU32Overflow(t *testing.T) {
	r := NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	_, err := r.ReadU32()
	if !stderrors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if r.Position() != 0 {
		t.Errorf("position after overflow: got %d, want 0", r.Position())
	}
}

func TestReaderReadU32Truncated(t *testing.T) {
	r := NewReader([]byte{0x01, 0x80, 0x80})
	if _, err := r.ReadU32(); err != nil {
		t.Fatal(err)
	}
	_, err := r.ReadU32()
	if !stderrors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
	if r.Position() != 1 {
		t.Errorf("position: got %d, want 1", r.Position())
	}
}

func TestReaderReadS32(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    int32
	}{
		{[]byte{0x05}, 5},
		// no sign extension of short encodings
		{[]byte{0x7f}, 127},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, -1},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x08}, math.MinInt32},
	}

	for _, tt := range tests {
		got, err := NewReader(tt.encoded).ReadS32()
		if err != nil {
			t.Errorf("ReadS32(%v): %v", tt.encoded, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadS32(%v): got %d, want %d", tt.encoded, got, tt.want)
		}
	}
}

func TestReaderReadS24(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    int32
	}{
		{[]byte{0x00, 0x00, 0x00}, 0},
		{[]byte{0x05, 0x00, 0x00}, 5},
		{[]byte{0xff, 0xff, 0xff}, -1},
		{[]byte{0xfe, 0xff, 0xff}, -2},
		{[]byte{0xff, 0xff, 0x7f}, 0x7fffff},
		{[]byte{0x00, 0x00, 0x80}, -0x800000},
	}

	for _, tt := range tests {
		got, err := NewReader(tt.encoded).ReadS24()
		if err != nil {
			t.Errorf("ReadS24(%v): %v", tt.encoded, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadS24(%v): got %d, want %d", tt.encoded, got, tt.want)
		}
	}

	if _, err := NewReader([]byte{0x01, 0x02}).ReadS24(); !stderrors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("short s24: got %v", err)
	}
}

func TestReaderFixedWidth(t *testing.T) {
	data := []byte{
		0x34, 0x12, // u16
		0x78, 0x56, 0x34, 0x12, // u32
		0, 0, 0, 0, 0, 0, 0xf8, 0x3f, // 1.5
	}
	r := NewReader(data)

	u16, err := r.ReadU16()
	if err != nil || u16 != 0x1234 {
		t.Errorf("ReadU16: got 0x%x, %v", u16, err)
	}
	u32, err := r.ReadU32LE()
	if err != nil || u32 != 0x12345678 {
		t.Errorf("ReadU32LE: got 0x%x, %v", u32, err)
	}
	d, err := r.ReadD64()
	if err != nil || d != 1.5 {
		t.Errorf("ReadD64: got %v, %v", d, err)
	}
	if _, err := r.ReadD64(); !stderrors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("ReadD64 at end: got %v", err)
	}
}

func TestReaderReadString(t *testing.T) {
	r := NewReader([]byte{0x03, 'f', 'o', 'o', 0x00, 0x05, 'a'})

	s, err := r.ReadString()
	if err != nil || s != "foo" {
		t.Errorf("ReadString: got %q, %v", s, err)
	}
	s, err = r.ReadString()
	if err != nil || s != "" {
		t.Errorf("empty ReadString: got %q, %v", s, err)
	}

	pos := r.Position()
	if _, err := r.ReadString(); !stderrors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("long ReadString: got %v", err)
	}
	if r.Position() != pos {
		t.Errorf("failed ReadString moved position %d -> %d", pos, r.Position())
	}
}

func TestReaderReadStringRawBytes(t *testing.T) {
	s, err := NewReader([]byte{0x02, 0xff, 0xfe}).ReadString()
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if s != "\xff\xfe" {
		t.Errorf("ReadString: got %q", s)
	}
}

func TestReaderReadCString(t *testing.T) {
	r := NewReader([]byte{'a', 'b', 0x00, 'c'})

	s, err := r.ReadCString()
	if err != nil || s != "ab" {
		t.Errorf("ReadCString: got %q, %v", s, err)
	}
	if r.Position() != 3 {
		t.Errorf("position: got %d, want 3", r.Position())
	}
	if _, err := r.ReadCString(); !stderrors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("unterminated ReadCString: got %v", err)
	}
}

func TestReaderReadRemaining(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4})

	if b, _ := r.ReadByte(); b != 1 {
		t.Fatalf("ReadByte: got %d", b)
	}
	if rest := r.ReadRemaining(); !bytes.Equal(rest, []byte{2, 3, 4}) {
		t.Errorf("ReadRemaining: got %v", rest)
	}
	if r.Len() != 0 {
		t.Errorf("Len after ReadRemaining: got %d", r.Len())
	}
	if rest := r.ReadRemaining(); len(rest) != 0 {
		t.Errorf("ReadRemaining at end: got %v", rest)
	}
}

func TestReaderFail(t *testing.T) {
	r := NewReader([]byte{0x01, 0x80})
	_, _ = r.ReadByte()
	_, err := r.ReadU30()

	got := r.Fail(errors.PhasePool, "int count", err)
	var e *errors.Error
	if !stderrors.As(got, &e) {
		t.Fatalf("Fail should return *errors.Error, got %T", got)
	}
	if e.Kind != errors.KindTruncated || e.Phase != errors.PhasePool {
		t.Errorf("got %s/%s", e.Phase, e.Kind)
	}
	if e.Offset != 1 {
		t.Errorf("Offset: got %d, want 1", e.Offset)
	}

	over := r.Fail(errors.PhaseBytecode, "u30", ErrOverflow)
	if errors.KindOf(over) != errors.KindOverflow {
		t.Errorf("overflow kind: got %s", errors.KindOf(over))
	}

	structured := errors.UnsupportedOpcode(0xff, 9)
	if r.Fail(errors.PhasePool, "x", structured) != error(structured) {
		t.Error("structured errors should pass through")
	}
}
