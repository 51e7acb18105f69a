package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/abcdump/abc"
)

// ILDump renders every method body of m in body table order: a signature
// line, a header comment, one line per instruction and the exception
// table. Bodies are separated by a blank line.
func ILDump(m *abc.Model) string {
	var b strings.Builder
	for i := range m.Bodies {
		writeBody(&b, m, &m.Bodies[i])
		b.WriteByte('\n')
	}
	return b.String()
}

// MethodIL renders the body of method i, or "" when it has none.
func MethodIL(m *abc.Model, method uint32) string {
	body, ok := m.BodyFor(method)
	if !ok {
		return ""
	}
	var b strings.Builder
	writeBody(&b, m, body)
	return b.String()
}

func writeBody(b *strings.Builder, m *abc.Model, body *abc.MethodBody) {
	p := m.Pool
	fmt.Fprintf(b, "function %s%s\n", m.MethodLabel(body.Method), ilSignature(m, body.Method))
	fmt.Fprintf(b, "  // method %d, max_stack %d, locals %d, scope %d..%d, code %d bytes\n",
		body.Method, body.MaxStack, body.LocalCount, body.InitScopeDepth, body.MaxScopeDepth, len(body.Code))

	if body.Err != nil {
		fmt.Fprintf(b, "  <decode error: %v>\n", body.Err)
	} else {
		for i := range body.Instructions {
			in := &body.Instructions[i]
			ops := operandsText(m, body, in)
			if in.IsDebug() {
				text := "// " + in.Name()
				if ops != "" {
					text += " " + ops
				}
				fmt.Fprintf(b, "  %6d  %s\n", in.Offset, text)
				continue
			}
			line := fmt.Sprintf("  %6d  %-16s %s", in.Offset, in.Name(), ops)
			b.WriteString(strings.TrimRight(line, " "))
			b.WriteByte('\n')
		}
	}

	if len(body.Exceptions) > 0 {
		b.WriteString("  exceptions:\n")
		for i, ex := range body.Exceptions {
			fmt.Fprintf(b, "    [%d] from %d to %d target %d type %s name %s\n",
				i, ex.From, ex.To, ex.Target, p.ResolveName(ex.Type), p.ResolveName(ex.VarName))
		}
	}
}

// ilSignature lists parameter types only; names and defaults belong to
// the stub.
func ilSignature(m *abc.Model, method uint32) string {
	info, ok := m.Method(method)
	if !ok {
		return "():*"
	}
	parts := make([]string, 0, len(info.ParamTypes)+1)
	for _, t := range info.ParamTypes {
		parts = append(parts, m.Pool.ResolveName(t))
	}
	if info.HasRest() {
		parts = append(parts, "...")
	}
	return "(" + strings.Join(parts, ", ") + "):" + m.Pool.ResolveName(info.ReturnType)
}

func operandsText(m *abc.Model, body *abc.MethodBody, in *abc.Instruction) string {
	if len(in.Operands) == 0 {
		return ""
	}
	parts := make([]string, len(in.Operands))
	for i, op := range in.Operands {
		parts[i] = operandText(m, body, op)
	}
	return strings.Join(parts, ", ")
}

func operandText(m *abc.Model, body *abc.MethodBody, op abc.Operand) string {
	p := m.Pool
	idx := uint32(op.Value)
	switch op.Kind {
	case abc.OperandBranch:
		return "-> " + strconv.FormatInt(op.Value, 10)
	case abc.OperandCases:
		cases := make([]string, len(op.Targets))
		for i, t := range op.Targets {
			cases[i] = "-> " + strconv.FormatInt(t, 10)
		}
		return "-> " + strconv.FormatInt(op.Value, 10) + " [" + strings.Join(cases, ", ") + "]"
	case abc.OperandInt:
		if int(idx) < len(p.Ints) {
			return strconv.FormatInt(int64(p.Ints[idx]), 10)
		}
	case abc.OperandUInt:
		if int(idx) < len(p.Uints) {
			return strconv.FormatUint(uint64(p.Uints[idx]), 10)
		}
	case abc.OperandDouble:
		if int(idx) < len(p.Doubles) {
			return formatNumber(p.Doubles[idx])
		}
	case abc.OperandString:
		return quote(p.String(idx))
	case abc.OperandNamespace:
		if int(idx) < len(p.Namespaces) {
			ns := p.Namespaces[idx]
			return ns.Kind.String() + " " + quote(p.String(ns.Name))
		}
	case abc.OperandMultiname:
		return p.ResolveName(idx)
	case abc.OperandMethod:
		return m.MethodLabel(idx)
	case abc.OperandClass:
		return m.ClassName(idx)
	case abc.OperandException:
		if int(idx) < len(body.Exceptions) {
			return "[" + strconv.FormatUint(uint64(idx), 10) + "]"
		}
	}
	return strconv.FormatInt(op.Value, 10)
}
