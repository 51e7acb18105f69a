package abc

import "sort"

// OperandKind is the encoding and meaning of one instruction operand.
type OperandKind int

const (
	OperandU8        OperandKind = iota // getscopeobject, debug
	OperandS8                           // pushbyte
	OperandU30                          // counts, registers, indices with no table
	OperandShort                        // pushshort: u30 rendered as int16
	OperandBranch                       // s24 relative to the next instruction
	OperandCases                        // lookupswitch: s24 default, u30 count, count+1 s24
	OperandInt                          // int pool index
	OperandUInt                         // uint pool index
	OperandDouble                       // double pool index
	OperandString                       // string pool index
	OperandNamespace                    // namespace pool index
	OperandMultiname                    // multiname pool index
	OperandMethod                       // method table index
	OperandClass                        // class table index
	OperandException                    // exception table index of the body
	OperandSlot                         // slot index
)

func (k OperandKind) String() string {
	switch k {
	case OperandU8:
		return "u8"
	case OperandS8:
		return "s8"
	case OperandU30:
		return "u30"
	case OperandShort:
		return "short"
	case OperandBranch:
		return "branch"
	case OperandCases:
		return "cases"
	case OperandInt:
		return "int"
	case OperandUInt:
		return "uint"
	case OperandDouble:
		return "double"
	case OperandString:
		return "string"
	case OperandNamespace:
		return "namespace"
	case OperandMultiname:
		return "multiname"
	case OperandMethod:
		return "method"
	case OperandClass:
		return "class"
	case OperandException:
		return "exception"
	case OperandSlot:
		return "slot"
	default:
		return "unknown"
	}
}

// Info describes one opcode.
type Info struct {
	Name     string
	Operands []OperandKind
	Debug    bool // source mapping only, rendered as a comment
}

// Lookup returns the description of an opcode byte.
func Lookup(op byte) (Info, bool) {
	info, ok := table[op]
	return info, ok
}

// LookupName returns the opcode byte for a mnemonic.
func LookupName(name string) (byte, bool) {
	op, ok := byName[name]
	return op, ok
}

// Opcodes returns every opcode in the table in ascending order.
func Opcodes() []byte {
	ops := make([]byte, 0, len(table))
	for op := range table {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// AlchemyOpcodes are the memory access and sign extension opcodes that
// take all their operands from the stack.
var AlchemyOpcodes = []byte{
	0x35, 0x36, 0x37, 0x38, 0x39, // li8 li16 li32 lf32 lf64
	0x3A, 0x3B, 0x3C, 0x3D, 0x3E, // si8 si16 si32 sf32 sf64
	0x50, 0x51, 0x52, // sxi1 sxi8 sxi16
}

func op(name string, operands ...OperandKind) Info {
	return Info{Name: name, Operands: operands}
}

func debugOp(name string, operands ...OperandKind) Info {
	return Info{Name: name, Operands: operands, Debug: true}
}

var table = map[byte]Info{
	0x01: op("bkpt"),
	0x02: op("nop"),
	0x03: op("throw"),
	0x04: op("getsuper", OperandMultiname),
	0x05: op("setsuper", OperandMultiname),
	0x06: op("dxns", OperandString),
	0x07: op("dxnslate"),
	0x08: op("kill", OperandU30),
	0x09: op("label"),

	// Branches
	0x0C: op("ifnlt", OperandBranch),
	0x0D: op("ifnle", OperandBranch),
	0x0E: op("ifngt", OperandBranch),
	0x0F: op("ifnge", OperandBranch),
	0x10: op("jump", OperandBranch),
	0x11: op("iftrue", OperandBranch),
	0x12: op("iffalse", OperandBranch),
	0x13: op("ifeq", OperandBranch),
	0x14: op("ifne", OperandBranch),
	0x15: op("iflt", OperandBranch),
	0x16: op("ifle", OperandBranch),
	0x17: op("ifgt", OperandBranch),
	0x18: op("ifge", OperandBranch),
	0x19: op("ifstricteq", OperandBranch),
	0x1A: op("ifstrictne", OperandBranch),
	0x1B: op("lookupswitch", OperandCases),

	// Scope and iteration
	0x1C: op("pushwith"),
	0x1D: op("popscope"),
	0x1E: op("nextname"),
	0x1F: op("hasnext"),
	0x20: op("pushnull"),
	0x21: op("pushundefined"),
	0x22: op("pushconstant", OperandU30),
	0x23: op("nextvalue"),

	// Constants
	0x24: op("pushbyte", OperandS8),
	0x25: op("pushshort", OperandShort),
	0x26: op("pushtrue"),
	0x27: op("pushfalse"),
	0x28: op("pushnan"),
	0x29: op("pop"),
	0x2A: op("dup"),
	0x2B: op("swap"),
	0x2C: op("pushstring", OperandString),
	0x2D: op("pushint", OperandInt),
	0x2E: op("pushuint", OperandUInt),
	0x2F: op("pushdouble", OperandDouble),
	0x30: op("pushscope"),
	0x31: op("pushnamespace", OperandNamespace),
	0x32: op("hasnext2", OperandU30, OperandU30),

	// Alchemy memory access
	0x35: op("li8"),
	0x36: op("li16"),
	0x37: op("li32"),
	0x38: op("lf32"),
	0x39: op("lf64"),
	0x3A: op("si8"),
	0x3B: op("si16"),
	0x3C: op("si32"),
	0x3D: op("sf32"),
	0x3E: op("sf64"),

	// Calls
	0x40: op("newfunction", OperandMethod),
	0x41: op("call", OperandU30),
	0x42: op("construct", OperandU30),
	0x43: op("callmethod", OperandU30, OperandU30),
	0x44: op("callstatic", OperandMethod, OperandU30),
	0x45: op("callsuper", OperandMultiname, OperandU30),
	0x46: op("callproperty", OperandMultiname, OperandU30),
	0x47: op("returnvoid"),
	0x48: op("returnvalue"),
	0x49: op("constructsuper", OperandU30),
	0x4A: op("constructprop", OperandMultiname, OperandU30),
	0x4C: op("callproplex", OperandMultiname, OperandU30),
	0x4E: op("callsupervoid", OperandMultiname, OperandU30),
	0x4F: op("callpropvoid", OperandMultiname, OperandU30),

	// Alchemy sign extension
	0x50: op("sxi1"),
	0x51: op("sxi8"),
	0x52: op("sxi16"),

	// Object construction
	0x53: op("applytype", OperandU30),
	0x55: op("newobject", OperandU30),
	0x56: op("newarray", OperandU30),
	0x57: op("newactivation"),
	0x58: op("newclass", OperandClass),
	0x59: op("getdescendants", OperandMultiname),
	0x5A: op("newcatch", OperandException),

	// Properties and locals
	0x5D: op("findpropstrict", OperandMultiname),
	0x5E: op("findproperty", OperandMultiname),
	0x5F: op("finddef", OperandMultiname),
	0x60: op("getlex", OperandMultiname),
	0x61: op("setproperty", OperandMultiname),
	0x62: op("getlocal", OperandU30),
	0x63: op("setlocal", OperandU30),
	0x64: op("getglobalscope"),
	0x65: op("getscopeobject", OperandU8),
	0x66: op("getproperty", OperandMultiname),
	0x67: op("getouterscope", OperandU30),
	0x68: op("initproperty", OperandMultiname),
	0x6A: op("deleteproperty", OperandMultiname),
	0x6C: op("getslot", OperandSlot),
	0x6D: op("setslot", OperandSlot),
	0x6E: op("getglobalslot", OperandSlot),
	0x6F: op("setglobalslot", OperandSlot),

	// Conversions
	0x70: op("convert_s"),
	0x71: op("esc_xelem"),
	0x72: op("esc_xattr"),
	0x73: op("convert_i"),
	0x74: op("convert_u"),
	0x75: op("convert_d"),
	0x76: op("convert_b"),
	0x77: op("convert_o"),
	0x78: op("checkfilter"),
	0x80: op("coerce", OperandMultiname),
	0x81: op("coerce_b"),
	0x82: op("coerce_a"),
	0x83: op("coerce_i"),
	0x84: op("coerce_d"),
	0x85: op("coerce_s"),
	0x86: op("astype", OperandMultiname),
	0x87: op("astypelate"),
	0x88: op("coerce_u"),
	0x89: op("coerce_o"),

	// Arithmetic
	0x90: op("negate"),
	0x91: op("increment"),
	0x92: op("inclocal", OperandU30),
	0x93: op("decrement"),
	0x94: op("declocal", OperandU30),
	0x95: op("typeof"),
	0x96: op("not"),
	0x97: op("bitnot"),
	0xA0: op("add"),
	0xA1: op("subtract"),
	0xA2: op("multiply"),
	0xA3: op("divide"),
	0xA4: op("modulo"),
	0xA5: op("lshift"),
	0xA6: op("rshift"),
	0xA7: op("urshift"),
	0xA8: op("bitand"),
	0xA9: op("bitor"),
	0xAA: op("bitxor"),
	0xAB: op("equals"),
	0xAC: op("strictequals"),
	0xAD: op("lessthan"),
	0xAE: op("lessequals"),
	0xAF: op("greaterthan"),
	0xB0: op("greaterequals"),
	0xB1: op("instanceof"),
	0xB2: op("istype", OperandMultiname),
	0xB3: op("istypelate"),
	0xB4: op("in"),
	0xC0: op("increment_i"),
	0xC1: op("decrement_i"),
	0xC2: op("inclocal_i", OperandU30),
	0xC3: op("declocal_i", OperandU30),
	0xC4: op("negate_i"),
	0xC5: op("add_i"),
	0xC6: op("subtract_i"),
	0xC7: op("multiply_i"),

	// Register shortcuts
	0xD0: op("getlocal0"),
	0xD1: op("getlocal1"),
	0xD2: op("getlocal2"),
	0xD3: op("getlocal3"),
	0xD4: op("setlocal0"),
	0xD5: op("setlocal1"),
	0xD6: op("setlocal2"),
	0xD7: op("setlocal3"),

	// Debugging
	0xEF: debugOp("debug", OperandU8, OperandString, OperandU8, OperandU30),
	0xF0: debugOp("debugline", OperandU30),
	0xF1: debugOp("debugfile", OperandString),
	0xF2: debugOp("bkptline", OperandU30),
	0xF3: op("timestamp"),
}

var byName = func() map[string]byte {
	m := make(map[string]byte, len(table))
	for code, info := range table {
		m[info.Name] = code
	}
	return m
}()
