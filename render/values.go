package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/wippyai/abcdump/abc"
)

// literal renders a default value as ActionScript source text.
func literal(p *abc.Pool, v abc.OptionalValue) string {
	switch v.Kind {
	case abc.ConstInt:
		if int(v.Index) < len(p.Ints) {
			return strconv.FormatInt(int64(p.Ints[v.Index]), 10)
		}
	case abc.ConstUInt:
		if int(v.Index) < len(p.Uints) {
			return strconv.FormatUint(uint64(p.Uints[v.Index]), 10)
		}
	case abc.ConstDouble:
		if int(v.Index) < len(p.Doubles) {
			return formatNumber(p.Doubles[v.Index])
		}
	case abc.ConstUtf8:
		return quote(p.String(v.Index))
	case abc.ConstTrue:
		return "true"
	case abc.ConstFalse:
		return "false"
	case abc.ConstNull:
		return "null"
	case abc.ConstUndefined:
		return "undefined"
	default:
		if int(v.Index) < len(p.Namespaces) {
			return quote(p.String(p.Namespaces[v.Index].Name))
		}
	}
	return "undefined"
}

// typedDefault is the default shown for an optional parameter whose
// value index is zero: it depends only on the declared type.
func typedDefault(typeName string) string {
	switch typeName {
	case "Number", "decimal":
		return "0"
	case "String":
		return `""`
	default:
		return "null"
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// param is one rendered parameter.
type param struct {
	name  string
	typ   string
	value string // default, "" when required
	rest  bool
}

func (p param) String() string {
	if p.rest {
		return "..." + p.name
	}
	s := p.name + ":" + p.typ
	if p.value != "" {
		s += " = " + p.value
	}
	return s
}

// params resolves the parameter list of m. Names come from the method's
// parameter names when they are usable identifiers, otherwise _N.
func params(pool *abc.Pool, m *abc.MethodInfo) []param {
	out := make([]param, len(m.ParamTypes))
	used := make(map[string]bool, len(out))
	firstOptional := len(m.ParamTypes) - len(m.Optional)

	for i, t := range m.ParamTypes {
		name := ""
		if i < len(m.ParamNames) {
			name = pool.String(m.ParamNames[i])
		}
		if !isIdentifier(name) || used[name] {
			name = "_" + strconv.Itoa(i)
		}
		used[name] = true

		typ := pool.ResolveName(t)
		out[i] = param{name: name, typ: typ}
		if i >= firstOptional {
			v := m.Optional[i-firstOptional]
			if v.Index == 0 {
				out[i].value = typedDefault(typ)
			} else {
				out[i].value = literal(pool, v)
			}
		}
	}

	if m.HasRest() {
		name := "rest"
		if used[name] {
			name = "__rest"
		}
		out = append(out, param{name: name, rest: true})
	}
	return out
}

func joinParams(ps []param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		case r > 0x7f && r != 0xfffd:
		default:
			return false
		}
	}
	return true
}

// quote renders s as an ActionScript string literal. Non-printable
// characters use \uXXXX escapes, as surrogate pairs above U+FFFF.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case unicode.IsPrint(r):
				b.WriteRune(r)
			case r > 0xFFFF:
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
			default:
				fmt.Fprintf(&b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
