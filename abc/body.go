package abc

import (
	"github.com/wippyai/abcdump/errors"
)

// Exception is an exception handler entry. From, To and Target are
// code offsets; Type and VarName are multiname indices.
type Exception struct {
	From    uint32
	To      uint32
	Target  uint32
	Type    uint32
	VarName uint32
}

// MethodBody holds the code of one method.
type MethodBody struct {
	// Err is set when the instruction stream failed to decode in
	// lenient mode. Instructions is nil in that case.
	Err error
	// Warnings holds an unsupported_opcode error for every unknown
	// opcode decoded in lenient mode.
	Warnings []error

	Code         []byte
	Exceptions   []Exception
	Traits       []Trait // activation traits
	Instructions []Instruction

	Method         uint32
	MaxStack       uint32
	LocalCount     uint32
	InitScopeDepth uint32
	MaxScopeDepth  uint32

	// CodeOffset is the position of Code within the ABC blob.
	CodeOffset int
}

// Errors returns Err, if set, followed by Warnings.
func (b *MethodBody) Errors() []error {
	if b.Err == nil {
		return b.Warnings
	}
	return append([]error{b.Err}, b.Warnings...)
}

func (d *decoder) decodeBodies() error {
	n, err := d.count("method body", 7)
	if err != nil {
		return err
	}
	d.f.Bodies = make([]MethodBody, n)
	for i := range d.f.Bodies {
		if err := d.decodeBody(&d.f.Bodies[i]); err != nil {
			return errors.WithPath(err, itoa(i))
		}
	}
	return nil
}

func (d *decoder) decodeBody(b *MethodBody) error {
	var err error
	if b.Method, err = d.method(false); err != nil {
		return err
	}
	if b.MaxStack, err = d.u30("max stack"); err != nil {
		return err
	}
	if b.LocalCount, err = d.u30("local count"); err != nil {
		return err
	}
	if b.InitScopeDepth, err = d.u30("init scope depth"); err != nil {
		return err
	}
	if b.MaxScopeDepth, err = d.u30("max scope depth"); err != nil {
		return err
	}

	pos := d.r.Position()
	codeLen, err := d.u30("code length")
	if err != nil {
		return err
	}
	if int64(codeLen) > int64(d.r.Len()) {
		return errors.New(errors.PhaseAssemble, errors.KindTruncated).
			Offset(pos).
			Detail("code length %d exceeds %d remaining bytes", codeLen, d.r.Len()).
			Value(codeLen).
			Build()
	}
	b.CodeOffset = d.r.Position()
	if b.Code, err = d.r.ReadBytes(int(codeLen)); err != nil {
		return d.r.Fail(errors.PhaseAssemble, "code", err)
	}

	n, err := d.count("exception", 5)
	if err != nil {
		return err
	}
	b.Exceptions = make([]Exception, n)
	for i := range b.Exceptions {
		ex := &b.Exceptions[i]
		if ex.From, err = d.u30("exception from"); err != nil {
			return err
		}
		if ex.To, err = d.u30("exception to"); err != nil {
			return err
		}
		if ex.Target, err = d.u30("exception target"); err != nil {
			return err
		}
		if ex.Type, err = d.multiname(); err != nil {
			return err
		}
		if ex.VarName, err = d.multiname(); err != nil {
			return err
		}
	}

	b.Traits, err = d.decodeTraits()
	return err
}
