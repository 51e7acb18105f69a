package render

import (
	"strings"

	"github.com/wippyai/abcdump/abc"
)

// InterfaceStub renders the public API of m as ActionScript declarations.
// Classes and package-level traits appear in script order, one package
// block each, separated by a blank line. Members keep trait order with
// instance members before statics. The output depends only on m.
func InterfaceStub(m *abc.Model) string {
	s := &stubPrinter{m: m, p: m.Pool}
	var blocks []string
	rendered := make([]bool, len(m.Classes))

	for si := range m.Scripts {
		traits := m.Scripts[si].Traits
		for ti := range traits {
			t := &traits[ti]
			if t.Kind == abc.TraitClass {
				if int(t.Class) >= len(m.Classes) || rendered[t.Class] {
					continue
				}
				rendered[t.Class] = true
				if block, ok := s.classBlock(&m.Classes[t.Class], t.Metadata); ok {
					blocks = append(blocks, block)
				}
				continue
			}
			if block, ok := s.traitBlock(t); ok {
				blocks = append(blocks, block)
			}
		}
	}

	// Classes no script declares still belong to the interface.
	for ci := range m.Classes {
		if rendered[ci] {
			continue
		}
		if block, ok := s.classBlock(&m.Classes[ci], nil); ok {
			blocks = append(blocks, block)
		}
	}

	return strings.Join(blocks, "\n")
}

// visibleInStub reports whether a declaration with this visibility is
// part of the public interface.
func visibleInStub(v abc.Visibility) bool {
	return v == abc.VisibilityPublic || v == abc.VisibilityNamespace
}

type stubPrinter struct {
	m *abc.Model
	p *abc.Pool
	b strings.Builder
}

func (s *stubPrinter) line(indent int, text string) {
	s.b.WriteString(strings.Repeat("  ", indent))
	s.b.WriteString(text)
	s.b.WriteByte('\n')
}

func (s *stubPrinter) take() string {
	out := s.b.String()
	s.b.Reset()
	return out
}

func (s *stubPrinter) openPackage(pkg string) {
	if pkg == "" {
		s.line(0, "package {")
	} else {
		s.line(0, "package "+pkg+" {")
	}
}

// modifier is the access keyword for a name: public, or the identifier
// of a user-defined namespace.
func (s *stubPrinter) modifier(name uint32) string {
	if s.p.Visibility(name) == abc.VisibilityPublic {
		return "public"
	}
	uri := s.p.NamespaceURI(name)
	if isIdentifier(uri) {
		return uri
	}
	return "namespace(" + quote(uri) + ")"
}

func (s *stubPrinter) classBlock(c *abc.ClassDef, metadata []uint32) (string, bool) {
	if !visibleInStub(s.p.Visibility(c.Name)) {
		return "", false
	}
	pkg, local := s.p.NamePackage(c.Name)

	s.openPackage(pkg)
	s.metadata(1, metadata)

	var head []string
	head = append(head, s.modifier(c.Name))
	if c.IsInterface() {
		head = append(head, "interface", local)
		if len(c.Interfaces) > 0 {
			head = append(head, "extends", s.nameList(c.Interfaces))
		}
	} else {
		if c.IsFinal() {
			head = append(head, "final")
		}
		if !c.IsSealed() {
			head = append(head, "dynamic")
		}
		head = append(head, "class", local)
		if super := s.p.ResolveName(c.Super); c.Super != 0 && super != "Object" {
			head = append(head, "extends", super)
		}
		if len(c.Interfaces) > 0 {
			head = append(head, "implements", s.nameList(c.Interfaces))
		}
	}
	s.line(1, strings.Join(head, " ")+" {")

	if !c.IsInterface() {
		if m, ok := s.m.Method(c.Init); ok && (len(m.ParamTypes) > 0 || m.HasRest()) {
			s.line(2, "public function "+local+"("+joinParams(params(s.p, m))+")")
		}
	}
	for i := range c.InstanceTraits {
		s.member(2, &c.InstanceTraits[i], false, c.IsInterface())
	}
	for i := range c.StaticTraits {
		s.member(2, &c.StaticTraits[i], true, false)
	}

	s.line(1, "}")
	s.line(0, "}")
	return s.take(), true
}

func (s *stubPrinter) traitBlock(t *abc.Trait) (string, bool) {
	if !visibleInStub(s.p.Visibility(t.Name)) {
		return "", false
	}
	pkg, _ := s.p.NamePackage(t.Name)
	s.openPackage(pkg)
	s.member(1, t, false, false)
	s.line(0, "}")
	return s.take(), true
}

func (s *stubPrinter) nameList(names []uint32) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = s.p.ResolveName(n)
	}
	return strings.Join(parts, ", ")
}

// member renders one trait. Interface members carry no access modifier
// and are always part of the interface.
func (s *stubPrinter) member(indent int, t *abc.Trait, static, inInterface bool) {
	if t.Kind == abc.TraitClass {
		return
	}
	if !inInterface && !visibleInStub(s.p.Visibility(t.Name)) {
		return
	}

	var mods []string
	if t.IsOverride() {
		mods = append(mods, "override")
	}
	if !inInterface {
		mods = append(mods, s.modifier(t.Name))
	}
	if static {
		mods = append(mods, "static")
	}
	if t.IsFinal() && t.Kind != abc.TraitSlot && t.Kind != abc.TraitConst {
		mods = append(mods, "final")
	}

	name := s.p.LocalName(t.Name)
	var decl string
	switch t.Kind {
	case abc.TraitSlot, abc.TraitConst:
		kw := "var"
		if t.Kind == abc.TraitConst {
			kw = "const"
		}
		decl = kw + " " + name + ":" + s.p.ResolveName(t.Type)
		if t.HasValue() {
			decl += " = " + literal(s.p, t.Value)
		}
		decl += ";"
	case abc.TraitMethod, abc.TraitFunction:
		decl = "function " + name + s.signature(t.Method) + ";"
	case abc.TraitGetter:
		decl = "function get " + name + s.signature(t.Method) + ";"
	case abc.TraitSetter:
		decl = "function set " + name + s.signature(t.Method) + ";"
	default:
		return
	}

	s.metadata(indent, t.Metadata)
	if len(mods) > 0 {
		decl = strings.Join(mods, " ") + " " + decl
	}
	s.line(indent, decl)
}

func (s *stubPrinter) signature(method uint32) string {
	m, ok := s.m.Method(method)
	if !ok {
		return "():*"
	}
	return "(" + joinParams(params(s.p, m)) + "):" + s.p.ResolveName(m.ReturnType)
}

// metadata renders entries verbatim as [Name(key="value", "keyless")].
func (s *stubPrinter) metadata(indent int, indices []uint32) {
	for _, idx := range indices {
		if int(idx) >= len(s.m.Metadata) {
			continue
		}
		md := &s.m.Metadata[idx]
		text := "[" + s.p.String(md.Name)
		if len(md.Items) > 0 {
			items := make([]string, len(md.Items))
			for i, it := range md.Items {
				v := quote(s.p.String(it.Value))
				if it.Key != 0 {
					v = s.p.String(it.Key) + "=" + v
				}
				items[i] = v
			}
			text += "(" + strings.Join(items, ", ") + ")"
		}
		s.line(indent, text+"]")
	}
}
