package rsdfmt

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// These helpers build gopkg.in/yaml.v3 Node trees directly rather than
// relying on yaml.Marshal's struct-tag reflection, because Go map iteration
// order is unspecified and the wire format's byte-determinism contract
// (spec.md 4.5) requires every Set and Map to serialize in the kind's total
// order regardless of how it happens to be stored in memory.

func strScalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intScalar(i int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(i)}
}

func sequence(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

func stringSequence(ss []string) *yaml.Node {
	items := make([]*yaml.Node, len(ss))
	for i, s := range ss {
		items[i] = strScalar(s)
	}
	return sequence(items...)
}

// mapping builds a mapping node from alternating key/value pairs produced by
// field(); the order given is the order emitted, which is how the "name",
// "kind", "value" (etc.) field ordering below stays stable across runs.
func mapping(fields ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: fields}
}

func field(key string, value *yaml.Node) []*yaml.Node {
	return []*yaml.Node{strScalar(key), value}
}

func mappingOf(fieldPairs ...[]*yaml.Node) *yaml.Node {
	var content []*yaml.Node
	for _, p := range fieldPairs {
		content = append(content, p...)
	}
	return mapping(content...)
}

// lookup returns the value node paired with key in a mapping node, or nil.
func lookup(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func stringsFromSeq(n *yaml.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, len(n.Content))
	for i, c := range n.Content {
		out[i] = c.Value
	}
	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(s)
}
