package abc

import (
	"math"
	"strconv"

	"github.com/wippyai/abcdump/errors"
	"github.com/wippyai/abcdump/internal/binary"
)

// Namespace is a namespace record. Name indexes the string table.
type Namespace struct {
	Kind NamespaceKind
	Name uint32
}

// Multiname is a name record. Which fields are meaningful depends on Kind:
//
//	QName, QNameA            NS, Name
//	RTQName, RTQNameA        Name
//	RTQNameL, RTQNameLA      (none)
//	NameL, NameLA            (none)
//	Multiname, MultinameA    Name, NSSet
//	MultinameL, MultinameLA  NSSet
//	TypeName                 Base, Params
type Multiname struct {
	Params []uint32
	Kind   MultinameKind
	NS     uint32
	Name   uint32
	NSSet  uint32
	Base   uint32
}

// Pool is a decoded constant pool. Entry 0 of every table is a
// synthesized sentinel that was never read from the input.
type Pool struct {
	Ints          []int32
	Uints         []uint32
	Doubles       []float64
	Strings       []string
	Namespaces    []Namespace
	NamespaceSets [][]uint32
	Multinames    []Multiname
}

// Minimum encoded size of one entry, used to reject absurd counts
// before allocating.
const (
	minIntSize       = 1
	minDoubleSize    = 8
	minStringSize    = 1
	minNamespaceSize = 2
	minNsSetSize     = 1
	minMultinameSize = 1
)

// DecodePool reads the constant pool sections in their fixed order.
func DecodePool(r *binary.Reader) (*Pool, error) {
	p := &Pool{}
	var err error

	if p.Ints, err = decodeInts(r); err != nil {
		return nil, err
	}
	if p.Uints, err = decodeUints(r); err != nil {
		return nil, err
	}
	if p.Doubles, err = decodeDoubles(r); err != nil {
		return nil, err
	}
	if p.Strings, err = decodeStrings(r); err != nil {
		return nil, err
	}
	if p.Namespaces, err = decodeNamespaces(r, len(p.Strings)); err != nil {
		return nil, err
	}
	if p.NamespaceSets, err = decodeNamespaceSets(r, len(p.Namespaces)); err != nil {
		return nil, err
	}
	if p.Multinames, err = decodeMultinames(r, p); err != nil {
		return nil, err
	}
	return p, nil
}

// readCount reads a section count and returns the number of entries
// including the sentinel. A zero count means an empty section.
func readCount(r *binary.Reader, section string, minSize int) (int, error) {
	n, err := r.ReadU30()
	if err != nil {
		return 0, r.Fail(errors.PhasePool, section+" count", err)
	}
	if n == 0 {
		return 1, nil
	}
	if int64(n-1)*int64(minSize) > int64(r.Len()) {
		return 0, errors.New(errors.PhasePool, errors.KindTruncated).
			Path(section).
			Offset(r.Position()).
			Detail("%d entries cannot fit in %d remaining bytes", n-1, r.Len()).
			Value(n).
			Build()
	}
	return int(n), nil
}

func decodeInts(r *binary.Reader) ([]int32, error) {
	n, err := readCount(r, "int", minIntSize)
	if err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i := 1; i < n; i++ {
		if out[i], err = r.ReadS32(); err != nil {
			return nil, r.Fail(errors.PhasePool, "int entry", err)
		}
	}
	return out, nil
}

func decodeUints(r *binary.Reader) ([]uint32, error) {
	n, err := readCount(r, "uint", minIntSize)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := 1; i < n; i++ {
		if out[i], err = r.ReadU32(); err != nil {
			return nil, r.Fail(errors.PhasePool, "uint entry", err)
		}
	}
	return out, nil
}

func decodeDoubles(r *binary.Reader) ([]float64, error) {
	n, err := readCount(r, "double", minDoubleSize)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	out[0] = math.NaN()
	for i := 1; i < n; i++ {
		if out[i], err = r.ReadD64(); err != nil {
			return nil, r.Fail(errors.PhasePool, "double entry", err)
		}
	}
	return out, nil
}

func decodeStrings(r *binary.Reader) ([]string, error) {
	n, err := readCount(r, "string", minStringSize)
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := 1; i < n; i++ {
		if out[i], err = r.ReadString(); err != nil {
			return nil, r.Fail(errors.PhasePool, "string entry", err)
		}
	}
	return out, nil
}

func decodeNamespaces(r *binary.Reader, nstrings int) ([]Namespace, error) {
	n, err := readCount(r, "namespace", minNamespaceSize)
	if err != nil {
		return nil, err
	}
	out := make([]Namespace, n)
	for i := 1; i < n; i++ {
		start := r.Position()
		kind, err := r.ReadByte()
		if err != nil {
			return nil, r.Fail(errors.PhasePool, "namespace kind", err)
		}
		if !NamespaceKind(kind).valid() {
			return nil, errors.New(errors.PhasePool, errors.KindInvalidData).
				Path("namespace", strconv.Itoa(i)).
				Offset(start).
				Detail("unknown namespace kind 0x%02x", kind).
				Value(kind).
				Build()
		}
		name, err := r.ReadU30()
		if err != nil {
			return nil, r.Fail(errors.PhasePool, "namespace name", err)
		}
		if int(name) >= nstrings {
			return nil, errors.DanglingReference(errors.PhasePool, "string", name, nstrings, start)
		}
		out[i] = Namespace{Kind: NamespaceKind(kind), Name: name}
	}
	return out, nil
}

func decodeNamespaceSets(r *binary.Reader, nns int) ([][]uint32, error) {
	n, err := readCount(r, "ns_set", minNsSetSize)
	if err != nil {
		return nil, err
	}
	out := make([][]uint32, n)
	for i := 1; i < n; i++ {
		start := r.Position()
		count, err := r.ReadU30()
		if err != nil {
			return nil, r.Fail(errors.PhasePool, "ns_set count", err)
		}
		if int64(count) > int64(r.Len()) {
			return nil, errors.Truncated(errors.PhasePool, "ns_set entries", start)
		}
		set := make([]uint32, count)
		for j := range set {
			pos := r.Position()
			ns, err := r.ReadU30()
			if err != nil {
				return nil, r.Fail(errors.PhasePool, "ns_set entry", err)
			}
			if int(ns) >= nns {
				return nil, errors.DanglingReference(errors.PhasePool, "namespace", ns, nns, pos)
			}
			set[j] = ns
		}
		out[i] = set
	}
	return out, nil
}

func decodeMultinames(r *binary.Reader, p *Pool) ([]Multiname, error) {
	n, err := readCount(r, "multiname", minMultinameSize)
	if err != nil {
		return nil, err
	}
	out := make([]Multiname, n)
	for i := 1; i < n; i++ {
		mn, err := decodeMultiname(r, p, i)
		if err != nil {
			return nil, err
		}
		out[i] = mn
	}
	if err := checkTypeNames(out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeMultiname(r *binary.Reader, p *Pool, i int) (Multiname, error) {
	start := r.Position()
	kind, err := r.ReadByte()
	if err != nil {
		return Multiname{}, r.Fail(errors.PhasePool, "multiname kind", err)
	}
	mn := Multiname{Kind: MultinameKind(kind)}

	readIndex := func(what string, limit int) (uint32, error) {
		pos := r.Position()
		v, err := r.ReadU30()
		if err != nil {
			return 0, r.Fail(errors.PhasePool, "multiname "+what, err)
		}
		if limit >= 0 && int(v) >= limit {
			return 0, errors.DanglingReference(errors.PhasePool, what, v, limit, pos)
		}
		return v, nil
	}

	switch mn.Kind {
	case MnQName, MnQNameA:
		if mn.NS, err = readIndex("namespace", len(p.Namespaces)); err != nil {
			return mn, err
		}
		if mn.Name, err = readIndex("string", len(p.Strings)); err != nil {
			return mn, err
		}
	case MnRTQName, MnRTQNameA:
		if mn.Name, err = readIndex("string", len(p.Strings)); err != nil {
			return mn, err
		}
	case MnRTQNameL, MnRTQNameLA, MnNameL, MnNameLA:
	case MnMultiname, MnMultinameA:
		if mn.Name, err = readIndex("string", len(p.Strings)); err != nil {
			return mn, err
		}
		if mn.NSSet, err = readIndex("ns_set", len(p.NamespaceSets)); err != nil {
			return mn, err
		}
	case MnMultinameL, MnMultinameLA:
		if mn.NSSet, err = readIndex("ns_set", len(p.NamespaceSets)); err != nil {
			return mn, err
		}
	case MnTypeName:
		// Base and parameters may refer to later entries; checked once
		// the whole table is known.
		if mn.Base, err = readIndex("multiname", -1); err != nil {
			return mn, err
		}
		count, err := r.ReadU30()
		if err != nil {
			return mn, r.Fail(errors.PhasePool, "typename parameter count", err)
		}
		if count != 1 {
			return mn, errors.New(errors.PhasePool, errors.KindMalformedMultiname).
				Path("multiname", strconv.Itoa(i)).
				Offset(start).
				Detail("typename with %d parameters, want 1", count).
				Value(count).
				Build()
		}
		param, err := readIndex("multiname", -1)
		if err != nil {
			return mn, err
		}
		mn.Params = []uint32{param}
	default:
		return mn, errors.New(errors.PhasePool, errors.KindMalformedMultiname).
			Path("multiname", strconv.Itoa(i)).
			Offset(start).
			Detail("unknown multiname kind 0x%02x", kind).
			Value(kind).
			Build()
	}
	return mn, nil
}

// checkTypeNames verifies TypeName references are in range and that no
// TypeName reaches itself through its base or parameters.
func checkTypeNames(mns []Multiname) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]byte, len(mns))

	var visit func(i uint32) error
	visit = func(i uint32) error {
		if int(i) >= len(mns) {
			return errors.New(errors.PhasePool, errors.KindDanglingReference).
				Path("multiname").
				Detail("typename refers to multiname %d (length %d)", i, len(mns)).
				Value(i).
				Build()
		}
		mn := &mns[i]
		if mn.Kind != MnTypeName {
			return nil
		}
		switch state[i] {
		case done:
			return nil
		case visiting:
			return errors.New(errors.PhasePool, errors.KindMalformedMultiname).
				Path("multiname", strconv.Itoa(int(i))).
				Detail("typename refers to itself").
				Value(i).
				Build()
		}
		state[i] = visiting
		if err := visit(mn.Base); err != nil {
			return err
		}
		for _, p := range mn.Params {
			if err := visit(p); err != nil {
				return err
			}
		}
		state[i] = done
		return nil
	}

	for i := 1; i < len(mns); i++ {
		if err := visit(uint32(i)); err != nil {
			return err
		}
	}
	return nil
}

// String returns entry i of the string table, or "" when out of range.
func (p *Pool) String(i uint32) string {
	if int(i) >= len(p.Strings) {
		return ""
	}
	return p.Strings[i]
}

// Multiname returns entry i of the multiname table and whether it exists.
func (p *Pool) Multiname(i uint32) (Multiname, bool) {
	if i == 0 || int(i) >= len(p.Multinames) {
		return Multiname{}, false
	}
	return p.Multinames[i], true
}
