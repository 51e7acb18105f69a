package abc

import (
	"fmt"

	"github.com/wippyai/abcdump/errors"
	"github.com/wippyai/abcdump/internal/binary"
)

// Mode selects how DecodeBody treats opcodes missing from the table.
type Mode int

const (
	// Lenient records unknown opcodes as operand-less instructions and
	// keeps going. Per-body errors and unknown opcodes are stored on the
	// body.
	Lenient Mode = iota
	// Strict fails on the first unknown opcode or body error.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// Operand is one decoded instruction operand.
//
// Value holds the scalar for every kind. For OperandBranch it is the
// absolute target offset. For OperandCases it is the absolute default
// target and Targets holds the absolute case targets.
type Operand struct {
	Targets []int64
	Value   int64
	Kind    OperandKind
}

// Instruction is a decoded opcode with its operands.
type Instruction struct {
	Operands []Operand
	Offset   uint32
	Size     uint32
	Opcode   byte
	Unknown  bool // opcode absent from the table, decoded leniently
}

// Name returns the mnemonic, or unknown_0xNN for unknown opcodes.
func (in *Instruction) Name() string {
	if info, ok := Lookup(in.Opcode); ok && !in.Unknown {
		return info.Name
	}
	return fmt.Sprintf("unknown_0x%02x", in.Opcode)
}

// IsDebug reports whether the instruction only carries source mapping.
func (in *Instruction) IsDebug() bool {
	info, ok := Lookup(in.Opcode)
	return ok && !in.Unknown && info.Debug
}

// DecodeBody decodes the instruction stream of body in one linear pass
// and validates its exception table against the instruction boundaries.
// Operand indices are checked against the tables of f.
func DecodeBody(f *File, body *MethodBody, mode Mode) ([]Instruction, error) {
	r := binary.NewReader(body.Code)
	var out []Instruction

	for r.Len() > 0 {
		start := r.Position()
		code, _ := r.ReadByte()

		info, ok := Lookup(code)
		if !ok {
			if mode == Strict {
				return nil, errors.UnsupportedOpcode(code, start)
			}
			out = append(out, Instruction{Offset: uint32(start), Size: 1, Opcode: code, Unknown: true})
			continue
		}

		in := Instruction{Offset: uint32(start), Opcode: code}
		if len(info.Operands) > 0 {
			in.Operands = make([]Operand, 0, len(info.Operands))
		}
		for _, kind := range info.Operands {
			operand, err := readOperand(r, f, body, kind, start)
			if err != nil {
				return nil, errors.WithPath(err, info.Name)
			}
			in.Operands = append(in.Operands, operand)
		}
		in.Size = uint32(r.Position() - start)
		out = append(out, in)
	}

	if err := checkExceptions(body, out); err != nil {
		return nil, err
	}
	return out, nil
}

func readOperand(r *binary.Reader, f *File, body *MethodBody, kind OperandKind, start int) (Operand, error) {
	operand := Operand{Kind: kind}
	fail := func(err error) (Operand, error) {
		return Operand{}, r.Fail(errors.PhaseBytecode, kind.String()+" operand", err)
	}

	switch kind {
	case OperandU8:
		b, err := r.ReadByte()
		if err != nil {
			return fail(err)
		}
		operand.Value = int64(b)
	case OperandS8:
		b, err := r.ReadByte()
		if err != nil {
			return fail(err)
		}
		operand.Value = int64(int8(b))
	case OperandShort:
		v, err := r.ReadU30()
		if err != nil {
			return fail(err)
		}
		operand.Value = int64(int16(v))
	case OperandBranch:
		v, err := r.ReadS24()
		if err != nil {
			return fail(err)
		}
		operand.Value = int64(r.Position()) + int64(v)
	case OperandCases:
		def, err := r.ReadS24()
		if err != nil {
			return fail(err)
		}
		count, err := r.ReadU30()
		if err != nil {
			return fail(err)
		}
		if (int64(count)+1)*3 > int64(r.Len()) {
			return Operand{}, errors.Truncated(errors.PhaseBytecode, "lookupswitch cases", r.Position())
		}
		operand.Value = int64(start) + int64(def)
		operand.Targets = make([]int64, count+1)
		for i := range operand.Targets {
			v, err := r.ReadS24()
			if err != nil {
				return fail(err)
			}
			operand.Targets[i] = int64(start) + int64(v)
		}
	default:
		pos := r.Position()
		v, err := r.ReadU30()
		if err != nil {
			return fail(err)
		}
		operand.Value = int64(v)
		if table, limit := operandLimit(f, body, kind); limit >= 0 && int64(v) >= int64(limit) {
			return Operand{}, errors.DanglingReference(errors.PhaseBytecode, table, v, limit, pos)
		}
	}
	return operand, nil
}

// operandLimit returns the table an index operand points into and its
// length, or -1 when the operand is not a table index.
func operandLimit(f *File, body *MethodBody, kind OperandKind) (string, int) {
	p := f.Pool
	switch kind {
	case OperandInt:
		return "int", len(p.Ints)
	case OperandUInt:
		return "uint", len(p.Uints)
	case OperandDouble:
		return "double", len(p.Doubles)
	case OperandString:
		return "string", len(p.Strings)
	case OperandNamespace:
		return "namespace", len(p.Namespaces)
	case OperandMultiname:
		return "multiname", len(p.Multinames)
	case OperandMethod:
		return "method", len(f.Methods)
	case OperandClass:
		return "class", len(f.Instances)
	case OperandException:
		return "exception", len(body.Exceptions)
	default:
		return "", -1
	}
}

// checkExceptions requires handler from and target offsets to start an
// instruction; to may also equal the code length.
func checkExceptions(body *MethodBody, ins []Instruction) error {
	if len(body.Exceptions) == 0 {
		return nil
	}
	boundary := make(map[uint32]bool, len(ins))
	for i := range ins {
		boundary[ins[i].Offset] = true
	}
	codeLen := uint32(len(body.Code))

	for i, ex := range body.Exceptions {
		check := func(field string, off uint32, allowEnd bool) error {
			if boundary[off] || (allowEnd && off == codeLen) {
				return nil
			}
			return errors.New(errors.PhaseBytecode, errors.KindDanglingReference).
				Path("exception", itoa(i)).
				Offset(int(off)).
				Detail("%s offset %d is not an instruction boundary", field, off).
				Value(off).
				Build()
		}
		if err := check("from", ex.From, false); err != nil {
			return err
		}
		if err := check("to", ex.To, true); err != nil {
			return err
		}
		if err := check("target", ex.Target, false); err != nil {
			return err
		}
	}
	return nil
}

// Parse decodes an ABC blob and all method bodies, then assembles the
// model. In Lenient mode body errors are stored on MethodBody.Err and
// each unknown opcode adds an unsupported_opcode error to
// MethodBody.Warnings; in Strict mode the first error is returned.
func Parse(data []byte, mode Mode) (*Model, error) {
	f, err := Decode(data)
	if err != nil {
		return nil, err
	}
	for i := range f.Bodies {
		body := &f.Bodies[i]
		ins, err := DecodeBody(f, body, mode)
		if err != nil {
			err = errors.WithPath(err, "method_body", itoa(i))
			if mode == Strict {
				return nil, err
			}
			body.Err = err
			continue
		}
		body.Instructions = ins
		for j := range ins {
			if ins[j].Unknown {
				w := errors.UnsupportedOpcode(ins[j].Opcode, int(ins[j].Offset))
				body.Warnings = append(body.Warnings, errors.WithPath(w, "method_body", itoa(i)))
			}
		}
	}
	return Assemble(f), nil
}
