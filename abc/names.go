package abc

import (
	"strconv"
	"strings"
)

// AnyName is the rendering of the "any" name and namespace.
const AnyName = "*"

// vectorPackage is elided from TypeName bases so that
// __AS3__.vec.Vector.<T> renders as Vector.<T>.
const vectorPackage = "__AS3__.vec"

// maxNameDepth bounds TypeName recursion for pools that were not
// produced by DecodePool.
const maxNameDepth = 32

// Visibility is the access level implied by a name's namespace kind.
type Visibility int

const (
	VisibilityUnknown Visibility = iota
	VisibilityPublic
	VisibilityInternal
	VisibilityProtected
	VisibilityPrivate
	VisibilityNamespace
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityInternal:
		return "internal"
	case VisibilityProtected:
		return "protected"
	case VisibilityPrivate:
		return "private"
	case VisibilityNamespace:
		return "namespace"
	default:
		return "unknown"
	}
}

// ResolveName renders multiname i as a display name. It never mutates
// the pool, so repeated calls return the same string.
func (p *Pool) ResolveName(i uint32) string {
	return p.resolve(i, 0)
}

func (p *Pool) resolve(i uint32, depth int) string {
	if i == 0 {
		return AnyName
	}
	if int(i) >= len(p.Multinames) || depth > maxNameDepth {
		return "<invalid multiname " + strconv.FormatUint(uint64(i), 10) + ">"
	}
	mn := p.Multinames[i]

	var name string
	switch mn.Kind {
	case MnQName, MnQNameA:
		name = p.qualify(mn.NS, p.localName(mn.Name))
	case MnRTQName, MnRTQNameA:
		name = AnyName + "::" + p.localName(mn.Name)
	case MnRTQNameL, MnRTQNameLA, MnNameL, MnNameLA, MnMultinameL, MnMultinameLA:
		name = AnyName + "::" + AnyName
	case MnMultiname, MnMultinameA:
		if ns, ok := p.singleNamespace(mn.NSSet); ok {
			name = p.qualify(ns, p.localName(mn.Name))
		} else {
			name = AnyName + "::" + p.localName(mn.Name)
		}
	case MnTypeName:
		return p.resolveTypeName(mn, depth)
	default:
		return "<invalid multiname " + strconv.FormatUint(uint64(i), 10) + ">"
	}

	if mn.Kind.Attribute() {
		return "@" + name
	}
	return name
}

func (p *Pool) resolveTypeName(mn Multiname, depth int) string {
	var b strings.Builder
	b.WriteString(p.typeNameBase(mn.Base, depth+1))
	b.WriteString(".<")
	for j, param := range mn.Params {
		if j > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.resolve(param, depth+1))
	}
	b.WriteByte('>')
	return b.String()
}

func (p *Pool) typeNameBase(i uint32, depth int) string {
	if mn, ok := p.Multiname(i); ok && (mn.Kind == MnQName || mn.Kind == MnQNameA) {
		if p.namespaceName(mn.NS) == vectorPackage {
			return p.localName(mn.Name)
		}
	}
	return p.resolve(i, depth)
}

// qualify joins a namespace and a local name. Only package namespaces
// contribute a prefix; the others are access qualifiers.
func (p *Pool) qualify(ns uint32, local string) string {
	if ns == 0 || int(ns) >= len(p.Namespaces) {
		return AnyName + "::" + local
	}
	n := p.Namespaces[ns]
	switch n.Kind {
	case NsPackage, NsPackageInternal:
		if pkg := p.String(n.Name); pkg != "" {
			return pkg + "." + local
		}
	}
	return local
}

func (p *Pool) localName(i uint32) string {
	if i == 0 || int(i) >= len(p.Strings) {
		return AnyName
	}
	return p.Strings[i]
}

func (p *Pool) namespaceName(ns uint32) string {
	if ns == 0 || int(ns) >= len(p.Namespaces) {
		return ""
	}
	return p.String(p.Namespaces[ns].Name)
}

func (p *Pool) singleNamespace(set uint32) (uint32, bool) {
	if set == 0 || int(set) >= len(p.NamespaceSets) {
		return 0, false
	}
	if s := p.NamespaceSets[set]; len(s) == 1 {
		return s[0], true
	}
	return 0, false
}

// nameNamespace returns the namespace a name is declared in, when the
// name is a QName or a Multiname over exactly one namespace.
func (p *Pool) nameNamespace(i uint32) (Namespace, bool) {
	mn, ok := p.Multiname(i)
	if !ok {
		return Namespace{}, false
	}
	var ns uint32
	switch mn.Kind {
	case MnQName, MnQNameA:
		ns = mn.NS
	case MnMultiname, MnMultinameA:
		if ns, ok = p.singleNamespace(mn.NSSet); !ok {
			return Namespace{}, false
		}
	default:
		return Namespace{}, false
	}
	if ns == 0 || int(ns) >= len(p.Namespaces) {
		return Namespace{}, false
	}
	return p.Namespaces[ns], true
}

// NamePackage splits multiname i into package and local name. The
// package is empty for top-level names and for access namespaces.
func (p *Pool) NamePackage(i uint32) (pkg, local string) {
	mn, ok := p.Multiname(i)
	if !ok {
		return "", AnyName
	}
	switch mn.Kind {
	case MnQName, MnQNameA, MnMultiname, MnMultinameA:
		local = p.localName(mn.Name)
	default:
		return "", p.ResolveName(i)
	}
	if ns, ok := p.nameNamespace(i); ok && (ns.Kind == NsPackage || ns.Kind == NsPackageInternal) {
		pkg = p.String(ns.Name)
	}
	return pkg, local
}

// LocalName returns the unqualified part of multiname i.
func (p *Pool) LocalName(i uint32) string {
	_, local := p.NamePackage(i)
	return local
}

// Visibility derives access from the namespace kind of multiname i.
func (p *Pool) Visibility(i uint32) Visibility {
	ns, ok := p.nameNamespace(i)
	if !ok {
		return VisibilityUnknown
	}
	switch ns.Kind {
	case NsPackage:
		return VisibilityPublic
	case NsPackageInternal:
		return VisibilityInternal
	case NsProtected, NsStaticProtected:
		return VisibilityProtected
	case NsPrivate:
		return VisibilityPrivate
	case NsNamespace, NsExplicit:
		return VisibilityNamespace
	default:
		return VisibilityUnknown
	}
}

// NamespaceURI returns the name of the namespace multiname i is
// declared in, or "".
func (p *Pool) NamespaceURI(i uint32) string {
	ns, ok := p.nameNamespace(i)
	if !ok {
		return ""
	}
	return p.String(ns.Name)
}
