package abc

import "fmt"

// Supported major versions of the ABC format.
const (
	MajorVersion46 = 46
	MajorVersion47 = 47
)

// NamespaceKind identifies the flavour of a namespace record.
type NamespaceKind byte

const (
	NsPrivate         NamespaceKind = 0x05
	NsNamespace       NamespaceKind = 0x08
	NsPackage         NamespaceKind = 0x16
	NsPackageInternal NamespaceKind = 0x17
	NsProtected       NamespaceKind = 0x18
	NsExplicit        NamespaceKind = 0x19
	NsStaticProtected NamespaceKind = 0x1A
)

func (k NamespaceKind) String() string {
	switch k {
	case NsPrivate:
		return "private"
	case NsNamespace:
		return "namespace"
	case NsPackage:
		return "package"
	case NsPackageInternal:
		return "internal"
	case NsProtected:
		return "protected"
	case NsExplicit:
		return "explicit"
	case NsStaticProtected:
		return "static_protected"
	default:
		return fmt.Sprintf("ns_0x%02x", byte(k))
	}
}

func (k NamespaceKind) valid() bool {
	switch k {
	case NsPrivate, NsNamespace, NsPackage, NsPackageInternal,
		NsProtected, NsExplicit, NsStaticProtected:
		return true
	}
	return false
}

// MultinameKind identifies the form of a multiname record.
type MultinameKind byte

const (
	MnQName       MultinameKind = 0x07
	MnQNameA      MultinameKind = 0x0D
	MnRTQName     MultinameKind = 0x0F
	MnRTQNameA    MultinameKind = 0x10
	MnRTQNameL    MultinameKind = 0x11
	MnRTQNameLA   MultinameKind = 0x12
	MnNameL       MultinameKind = 0x13
	MnNameLA      MultinameKind = 0x14
	MnMultiname   MultinameKind = 0x09
	MnMultinameA  MultinameKind = 0x0E
	MnMultinameL  MultinameKind = 0x1B
	MnMultinameLA MultinameKind = 0x1C
	MnTypeName    MultinameKind = 0x1D
)

// Attribute reports whether the kind names an XML attribute.
func (k MultinameKind) Attribute() bool {
	switch k {
	case MnQNameA, MnRTQNameA, MnRTQNameLA, MnNameLA, MnMultinameA, MnMultinameLA:
		return true
	}
	return false
}

func (k MultinameKind) String() string {
	switch k {
	case MnQName:
		return "QName"
	case MnQNameA:
		return "QNameA"
	case MnRTQName:
		return "RTQName"
	case MnRTQNameA:
		return "RTQNameA"
	case MnRTQNameL:
		return "RTQNameL"
	case MnRTQNameLA:
		return "RTQNameLA"
	case MnNameL:
		return "NameL"
	case MnNameLA:
		return "NameLA"
	case MnMultiname:
		return "Multiname"
	case MnMultinameA:
		return "MultinameA"
	case MnMultinameL:
		return "MultinameL"
	case MnMultinameLA:
		return "MultinameLA"
	case MnTypeName:
		return "TypeName"
	default:
		return fmt.Sprintf("mn_0x%02x", byte(k))
	}
}

// MethodFlags are the flag bits of a method_info record.
type MethodFlags byte

const (
	MethodNeedArguments  MethodFlags = 0x01
	MethodNeedActivation MethodFlags = 0x02
	MethodNeedRest       MethodFlags = 0x04
	MethodHasOptional    MethodFlags = 0x08
	MethodIgnoreRest     MethodFlags = 0x10
	MethodNative         MethodFlags = 0x20
	MethodSetDXNS        MethodFlags = 0x40
	MethodHasParamNames  MethodFlags = 0x80
)

// ConstantKind tags the pool a default value index points into.
type ConstantKind byte

const (
	ConstUndefined ConstantKind = 0x00
	ConstUtf8      ConstantKind = 0x01
	ConstInt       ConstantKind = 0x03
	ConstUInt      ConstantKind = 0x04
	ConstDouble    ConstantKind = 0x06
	ConstFalse     ConstantKind = 0x0A
	ConstTrue      ConstantKind = 0x0B
	ConstNull      ConstantKind = 0x0C
)

// TraitKind is the low nibble of a trait's kind byte.
type TraitKind byte

const (
	TraitSlot     TraitKind = 0
	TraitMethod   TraitKind = 1
	TraitGetter   TraitKind = 2
	TraitSetter   TraitKind = 3
	TraitClass    TraitKind = 4
	TraitFunction TraitKind = 5
	TraitConst    TraitKind = 6
)

func (k TraitKind) String() string {
	switch k {
	case TraitSlot:
		return "slot"
	case TraitMethod:
		return "method"
	case TraitGetter:
		return "getter"
	case TraitSetter:
		return "setter"
	case TraitClass:
		return "class"
	case TraitFunction:
		return "function"
	case TraitConst:
		return "const"
	default:
		return fmt.Sprintf("trait_%d", byte(k))
	}
}

// TraitAttr is the high nibble of a trait's kind byte.
type TraitAttr byte

const (
	AttrFinal    TraitAttr = 0x1
	AttrOverride TraitAttr = 0x2
	AttrMetadata TraitAttr = 0x4
)

// InstanceFlags are the flag bits of an instance_info record.
type InstanceFlags byte

const (
	ClassSealed      InstanceFlags = 0x01
	ClassFinal       InstanceFlags = 0x02
	ClassInterface   InstanceFlags = 0x04
	ClassProtectedNs InstanceFlags = 0x08
)
