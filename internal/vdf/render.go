package vdf

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// MarshalJSON renders leaves as strings and nodes as objects whose members
// follow file order. Duplicate keys are emitted as repeated members rather
// than merged, so the output is faithful but not every JSON reader keeps
// all of them.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) appendJSON(buf *bytes.Buffer) error {
	if v.IsLeaf() {
		data, err := json.Marshal(v.leaf)
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	}

	buf.WriteByte('{')
	for i, e := range v.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := e.Value.appendJSON(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// ToYAMLNode converts the tree into a yaml.v3 document node with the same
// ordering guarantees as MarshalJSON.
func (v *Value) ToYAMLNode() *yaml.Node {
	if v.IsLeaf() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.leaf}
	}
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range v.Entries() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
			e.Value.ToYAMLNode(),
		)
	}
	return node
}

// MarshalYAML lets yaml.Marshal encode a Value directly.
func (v *Value) MarshalYAML() (any, error) {
	return v.ToYAMLNode(), nil
}
