package abc

import (
	"strconv"

	"github.com/wippyai/abcdump/errors"
	"github.com/wippyai/abcdump/internal/binary"
)

// File is the raw record structure of one ABC blob. All cross
// references are indices into the pool or the File's own tables.
type File struct {
	Pool      *Pool
	Methods   []MethodInfo
	Metadata  []Metadata
	Instances []Instance
	Classes   []Class
	Scripts   []Script
	Bodies    []MethodBody
	Minor     uint16
	Major     uint16
}

// decoder walks one ABC blob. Table lengths already read bound the
// indices accepted by later tables.
type decoder struct {
	r *binary.Reader
	f *File
}

// Decode reads the structure of an ABC blob: version, constant pool and
// all record tables. Method body code is kept as raw bytes; see DecodeBody.
func Decode(data []byte) (*File, error) {
	d := &decoder{r: binary.NewReader(data), f: &File{}}
	if err := d.decode(); err != nil {
		return nil, err
	}
	return d.f, nil
}

func (d *decoder) decode() error {
	var err error
	if d.f.Minor, err = d.r.ReadU16(); err != nil {
		return d.r.Fail(errors.PhasePool, "minor version", err)
	}
	if d.f.Major, err = d.r.ReadU16(); err != nil {
		return d.r.Fail(errors.PhasePool, "major version", err)
	}
	if d.f.Major != MajorVersion46 && d.f.Major != MajorVersion47 {
		return errors.New(errors.PhasePool, errors.KindInvalidData).
			Offset(2).
			Detail("unsupported abc version %d.%d", d.f.Major, d.f.Minor).
			Value(d.f.Major).
			Build()
	}

	if d.f.Pool, err = DecodePool(d.r); err != nil {
		return err
	}
	if err := d.decodeMethods(); err != nil {
		return errors.WithPath(err, "method_info")
	}
	if err := d.decodeMetadata(); err != nil {
		return errors.WithPath(err, "metadata")
	}
	if err := d.decodeClasses(); err != nil {
		return err
	}
	if err := d.decodeScripts(); err != nil {
		return errors.WithPath(err, "script")
	}
	if err := d.decodeBodies(); err != nil {
		return errors.WithPath(err, "method_body")
	}
	return nil
}

// count reads a table length and rejects lengths that cannot fit in
// the remaining bytes.
func (d *decoder) count(what string, minSize int) (int, error) {
	start := d.r.Position()
	n, err := d.r.ReadU30()
	if err != nil {
		return 0, d.r.Fail(errors.PhaseAssemble, what+" count", err)
	}
	if int64(n)*int64(minSize) > int64(d.r.Len()) {
		return 0, errors.Truncated(errors.PhaseAssemble, what+" entries", start)
	}
	return int(n), nil
}

// index reads a u30 table index and checks it against limit.
func (d *decoder) index(table string, limit int) (uint32, error) {
	pos := d.r.Position()
	v, err := d.r.ReadU30()
	if err != nil {
		return 0, d.r.Fail(errors.PhaseAssemble, table+" index", err)
	}
	if int64(v) >= int64(limit) {
		return 0, errors.DanglingReference(errors.PhaseAssemble, table, v, limit, pos)
	}
	return v, nil
}

func (d *decoder) u30(what string) (uint32, error) {
	v, err := d.r.ReadU30()
	if err != nil {
		return 0, d.r.Fail(errors.PhaseAssemble, what, err)
	}
	return v, nil
}

func (d *decoder) u8(what string) (byte, error) {
	v, err := d.r.ReadByte()
	if err != nil {
		return 0, d.r.Fail(errors.PhaseAssemble, what, err)
	}
	return v, nil
}

func (d *decoder) multiname() (uint32, error) {
	return d.index("multiname", len(d.f.Pool.Multinames))
}

func (d *decoder) str() (uint32, error) {
	return d.index("string", len(d.f.Pool.Strings))
}

// method reads a method index. An index of zero into an empty method
// table is tolerated for script initializers of empty scripts.
func (d *decoder) method(allowEmpty bool) (uint32, error) {
	if allowEmpty && len(d.f.Methods) == 0 {
		pos := d.r.Position()
		v, err := d.u30("method index")
		if err != nil {
			return 0, err
		}
		if v != 0 {
			return 0, errors.DanglingReference(errors.PhaseAssemble, "method", v, 0, pos)
		}
		return v, nil
	}
	return d.index("method", len(d.f.Methods))
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
