// Package rsdfmt implements RSD's self-describing, byte-deterministic
// persisted state format (spec.md 4.5): a tagged-text document where every
// element carries its kind tag, Sets and Maps serialize in the kind's total
// order, and the format round-trips (parse(serialize(v)) = v).
//
// Manual gopkg.in/yaml.v3 Node construction is used throughout instead of
// yaml.Marshal on plain structs/maps, because reflection-driven marshaling of
// a Go map has no ordering guarantee and would violate the byte-determinism
// contract.
package rsdfmt

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ready-set-deploy/rsd/internal/component"
	"github.com/ready-set-deploy/rsd/internal/element"
	"github.com/ready-set-deploy/rsd/internal/listdiff"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
	"github.com/ready-set-deploy/rsd/internal/system"
)

const formatVersion = 1

func parseErr(format string, args ...any) error {
	return rsderrors.Wrap(rsderrors.ErrParseError, rsderrors.Key{}, format, args...)
}

// MarshalSystem renders a system to its canonical on-disk form: a version
// tag, a derived full/partial mode flag, and an ordered component list.
func MarshalSystem(s system.System) ([]byte, error) {
	comps := s.Components()
	compNodes := make([]*yaml.Node, len(comps))
	for i, c := range comps {
		n, err := marshalComponent(c)
		if err != nil {
			return nil, err
		}
		compNodes[i] = n
	}

	mode := "partial"
	if s.IsFull() {
		mode = "full"
	}

	root := mappingOf(
		field("version", intScalar(formatVersion)),
		field("mode", strScalar(mode)),
		field("components", sequence(compNodes...)),
	)
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	return yaml.Marshal(doc)
}

// UnmarshalSystem parses a document produced by MarshalSystem. The "mode"
// field is informational only (IsFull is always re-derived from the parsed
// components); a document need not agree with its own label for this to
// succeed, since systems assembled piecemeal on disk may have been hand-
// edited since gather.
func UnmarshalSystem(data []byte) (system.System, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return system.System{}, parseErr("malformed document: %s", err)
	}
	if len(doc.Content) == 0 {
		return system.New(), nil
	}
	root := doc.Content[0]

	compsNode := lookup(root, "components")
	if compsNode == nil {
		return system.New(), nil
	}
	comps := make([]component.Component, 0, len(compsNode.Content))
	for _, cn := range compsNode.Content {
		c, err := unmarshalComponent(cn)
		if err != nil {
			return system.System{}, err
		}
		comps = append(comps, c)
	}
	return system.New(comps...), nil
}

// MarshalComponent renders a single component, used for the external-
// provider protocol's render input (gather output is a whole system
// document, read with UnmarshalSystem).
func MarshalComponent(c component.Component) ([]byte, error) {
	n, err := marshalComponent(c)
	if err != nil {
		return nil, err
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{n}}
	return yaml.Marshal(doc)
}

// UnmarshalComponent parses a single component document.
func UnmarshalComponent(data []byte) (component.Component, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return component.Component{}, parseErr("malformed document: %s", err)
	}
	if len(doc.Content) == 0 {
		return component.Component{}, parseErr("empty component document")
	}
	return unmarshalComponent(doc.Content[0])
}

func marshalComponent(c component.Component) (*yaml.Node, error) {
	deps := make([]*yaml.Node, len(c.Dependencies))
	for i, d := range c.Dependencies {
		deps[i] = mappingOf(
			field("type", strScalar(d.Type)),
			field("qualifier", stringSequence(d.Qualifier)),
		)
	}

	elements := append([]component.NamedElement{}, c.Elements...)
	sort.Slice(elements, func(i, j int) bool { return elements[i].Name < elements[j].Name })

	elemNodes := make([]*yaml.Node, len(elements))
	for i, e := range elements {
		n, err := marshalNamedElement(c.Mode, e)
		if err != nil {
			return nil, err
		}
		elemNodes[i] = n
	}

	return mappingOf(
		field("type", strScalar(c.Key.Type)),
		field("qualifier", stringSequence(c.Key.Qualifier)),
		field("mode", strScalar(c.Mode.String())),
		field("dependencies", sequence(deps...)),
		field("elements", sequence(elemNodes...)),
	), nil
}

func marshalNamedElement(mode component.Mode, e component.NamedElement) (*yaml.Node, error) {
	var kind element.Kind
	var valueNode *yaml.Node
	var err error

	if mode == component.DIFF {
		d, ok := e.Value.(element.Diff)
		if !ok {
			return nil, rsderrors.Wrap(rsderrors.ErrSchemaMismatch, rsderrors.Key{Element: e.Name}, "DIFF component element %q is not in diff form", e.Name)
		}
		kind = d.Kind()
		valueNode, err = diffValueNode(d)
	} else {
		f, ok := e.Value.(element.Full)
		if !ok {
			return nil, rsderrors.Wrap(rsderrors.ErrSchemaMismatch, rsderrors.Key{Element: e.Name}, "component element %q is not in full form", e.Name)
		}
		kind = f.Kind()
		valueNode, err = bareFullNode(f)
	}
	if err != nil {
		return nil, err
	}

	return mappingOf(
		field("name", strScalar(e.Name)),
		field("kind", strScalar(kind.String())),
		field("value", valueNode),
	), nil
}

// bareFullNode renders a Full value's content without a surrounding kind tag
// (the caller already recorded the kind alongside it) -- except inside a Map,
// whose values may be any kind and so are individually tagged via
// taggedFullNode to stay self-describing under recursion.
func bareFullNode(f element.Full) (*yaml.Node, error) {
	switch v := f.(type) {
	case element.Atom:
		return strScalar(string(v)), nil
	case element.Set:
		return stringSequence(atomStrings(v.Sorted())), nil
	case element.List:
		return stringSequence(v.Strings()), nil
	case element.Map:
		keys := v.SortedKeys()
		var pairs []*yaml.Node
		for _, k := range keys {
			tagged, err := taggedFullNode(v[k])
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, strScalar(string(k)), tagged)
		}
		return mapping(pairs...), nil
	default:
		return nil, parseErr("unrecognized full element type %T", f)
	}
}

func taggedFullNode(f element.Full) (*yaml.Node, error) {
	bare, err := bareFullNode(f)
	if err != nil {
		return nil, err
	}
	return mappingOf(
		field("kind", strScalar(f.Kind().String())),
		field("value", bare),
	), nil
}

func diffValueNode(d element.Diff) (*yaml.Node, error) {
	switch v := d.(type) {
	case element.AtomDiff:
		return strScalar(string(v)), nil
	case element.SetDiff:
		return mappingOf(
			field("add", stringSequence(atomStrings(v.Add.Sorted()))),
			field("remove", stringSequence(atomStrings(v.Remove.Sorted()))),
		), nil
	case element.MapDiff:
		keys := make([]element.Atom, 0, len(v.Set))
		for k := range v.Set {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

		var setPairs []*yaml.Node
		for _, k := range keys {
			tagged, err := taggedFullNode(v.Set[k])
			if err != nil {
				return nil, err
			}
			setPairs = append(setPairs, strScalar(string(k)), tagged)
		}

		remove := append([]element.Atom{}, v.Remove...)
		sort.Slice(remove, func(i, j int) bool { return remove[i] < remove[j] })

		return mappingOf(
			field("remove", stringSequence(atomStrings(remove))),
			field("set", mapping(setPairs...)),
		), nil
	case element.ListDiff:
		hunkNodes := make([]*yaml.Node, len(v.Script.Hunks))
		for i, h := range v.Script.Hunks {
			hunkNodes[i] = mappingOf(
				field("pre", stringSequence(h.Pre)),
				field("old", stringSequence(h.Old)),
				field("new", stringSequence(h.New)),
				field("post", stringSequence(h.Post)),
			)
		}
		return mappingOf(
			field("context", intScalar(v.Context)),
			field("hunks", sequence(hunkNodes...)),
		), nil
	default:
		return nil, parseErr("unrecognized diff element type %T", d)
	}
}

func atomStrings(atoms []element.Atom) []string {
	out := make([]string, len(atoms))
	for i, a := range atoms {
		out[i] = string(a)
	}
	return out
}

func unmarshalComponent(n *yaml.Node) (component.Component, error) {
	typeNode := lookup(n, "type")
	modeNode := lookup(n, "mode")
	if typeNode == nil || modeNode == nil {
		return component.Component{}, parseErr("component missing required field type or mode")
	}

	mode, err := parseMode(modeNode.Value)
	if err != nil {
		return component.Component{}, err
	}

	key := component.Key{Type: typeNode.Value, Qualifier: stringsFromSeq(lookup(n, "qualifier"))}

	var deps []component.Dependency
	if depsNode := lookup(n, "dependencies"); depsNode != nil {
		for _, dn := range depsNode.Content {
			dtype := lookup(dn, "type")
			if dtype == nil {
				return component.Component{}, parseErr("dependency missing type")
			}
			deps = append(deps, component.Dependency{Type: dtype.Value, Qualifier: stringsFromSeq(lookup(dn, "qualifier"))})
		}
	}

	var elems []component.NamedElement
	if elemsNode := lookup(n, "elements"); elemsNode != nil {
		for _, en := range elemsNode.Content {
			e, err := unmarshalNamedElement(mode, en)
			if err != nil {
				return component.Component{}, err
			}
			elems = append(elems, e)
		}
	}

	return component.Component{Key: key, Mode: mode, Elements: elems, Dependencies: deps}, nil
}

func unmarshalNamedElement(mode component.Mode, n *yaml.Node) (component.NamedElement, error) {
	nameNode := lookup(n, "name")
	kindNode := lookup(n, "kind")
	valueNode := lookup(n, "value")
	if nameNode == nil || kindNode == nil || valueNode == nil {
		return component.NamedElement{}, parseErr("element missing name, kind, or value")
	}

	kind, err := parseKind(kindNode.Value)
	if err != nil {
		return component.NamedElement{}, err
	}

	var value any
	if mode == component.DIFF {
		value, err = parseDiff(kind, valueNode)
	} else {
		value, err = parseBareFull(kind, valueNode)
	}
	if err != nil {
		return component.NamedElement{}, err
	}
	return component.NamedElement{Name: nameNode.Value, Value: value}, nil
}

func parseBareFull(kind element.Kind, n *yaml.Node) (element.Full, error) {
	switch kind {
	case element.KindAtom:
		return element.Atom(n.Value), nil
	case element.KindSet:
		return element.NewSet(atomsFromStrings(stringsFromSeq(n))...), nil
	case element.KindList:
		return element.NewList(stringsFromSeq(n)...), nil
	case element.KindMap:
		m := element.Map{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := element.Atom(n.Content[i].Value)
			v, err := parseTaggedFull(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil
	default:
		return nil, parseErr("unknown element kind")
	}
}

func parseTaggedFull(n *yaml.Node) (element.Full, error) {
	kindNode := lookup(n, "kind")
	valueNode := lookup(n, "value")
	if kindNode == nil || valueNode == nil {
		return nil, parseErr("tagged value missing kind or value")
	}
	kind, err := parseKind(kindNode.Value)
	if err != nil {
		return nil, err
	}
	return parseBareFull(kind, valueNode)
}

func parseDiff(kind element.Kind, n *yaml.Node) (element.Diff, error) {
	switch kind {
	case element.KindAtom:
		return element.AtomDiff(n.Value), nil
	case element.KindSet:
		add := element.NewSet(atomsFromStrings(stringsFromSeq(lookup(n, "add")))...)
		remove := element.NewSet(atomsFromStrings(stringsFromSeq(lookup(n, "remove")))...)
		return element.SetDiff{Add: add, Remove: remove}, nil
	case element.KindMap:
		remove := atomsFromStrings(stringsFromSeq(lookup(n, "remove")))
		setNode := lookup(n, "set")
		set := make(map[element.Atom]element.Full)
		for i := 0; setNode != nil && i+1 < len(setNode.Content); i += 2 {
			k := element.Atom(setNode.Content[i].Value)
			v, err := parseTaggedFull(setNode.Content[i+1])
			if err != nil {
				return nil, err
			}
			set[k] = v
		}
		return element.MapDiff{Remove: remove, Set: set}, nil
	case element.KindList:
		contextNode := lookup(n, "context")
		if contextNode == nil {
			return nil, parseErr("list diff missing context")
		}
		context, err := atoi(contextNode.Value)
		if err != nil {
			return nil, parseErr("invalid list diff context: %s", err)
		}
		var hunks []listdiff.Hunk
		hunksNode := lookup(n, "hunks")
		if hunksNode == nil {
			return nil, parseErr("list diff missing hunks")
		}
		for _, hn := range hunksNode.Content {
			hunks = append(hunks, listdiff.Hunk{
				Pre:  stringsFromSeq(lookup(hn, "pre")),
				Old:  stringsFromSeq(lookup(hn, "old")),
				New:  stringsFromSeq(lookup(hn, "new")),
				Post: stringsFromSeq(lookup(hn, "post")),
			})
		}
		return element.ListDiff{Script: listdiff.Script{Hunks: hunks}, Context: context}, nil
	default:
		return nil, parseErr("unknown element kind")
	}
}

func atomsFromStrings(ss []string) []element.Atom {
	out := make([]element.Atom, len(ss))
	for i, s := range ss {
		out[i] = element.Atom(s)
	}
	return out
}

func parseKind(s string) (element.Kind, error) {
	switch s {
	case "atom":
		return element.KindAtom, nil
	case "set":
		return element.KindSet, nil
	case "map":
		return element.KindMap, nil
	case "list":
		return element.KindList, nil
	default:
		return 0, parseErr("unknown kind tag %q", s)
	}
}

func parseMode(s string) (component.Mode, error) {
	switch s {
	case "full":
		return component.FULL, nil
	case "diff":
		return component.DIFF, nil
	case "absent":
		return component.ABSENT, nil
	default:
		return 0, parseErr("unknown mode tag %q", s)
	}
}
